package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/paulcor/godib/bmp"
	"github.com/paulcor/godib/icocur"
	"github.com/paulcor/godib/internal/format"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "inspect FILE",
		Short:        "Print the header fields of a BMP/ICO/CUR file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fh, ok := format.NewRegistry().Sniff(data)
	if !ok {
		return fmt.Errorf("%s: not a recognized BMP/ICO/CUR file", path)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch fh.Kind {
	case "bmp":
		h, err := (&bmp.Codec{}).Inspect(newReaderFor(data))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "format\tBMP\n")
		fmt.Fprintf(w, "width\t%d\n", h.Width)
		fmt.Fprintf(w, "height\t%d\n", h.Height)
		fmt.Fprintf(w, "top-down\t%v\n", h.TopDown)
		fmt.Fprintf(w, "bits per pixel\t%d\n", h.BitsPerPixel)
		fmt.Fprintf(w, "compression\t%d\n", h.Compression)
		fmt.Fprintf(w, "colors in palette\t%d\n", h.EffectiveNumColors())
		fmt.Fprintf(w, "has bitfields\t%v\n", h.HasBitFields)
		return nil
	case "ico", "cur":
		kind, entries, err := (&icocur.Codec{}).Inspect(newReaderFor(data))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "format\t%s\n", fh.Description)
		fmt.Fprintf(w, "entries\t%d\n", len(entries))
		fmt.Fprintln(w, "IDX\tWIDTH\tHEIGHT\tCOLORS\tBPP\tPNG")
		for i, e := range entries {
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%v\n", i, e.Width, e.Height, e.ColorCount, e.BitCount, e.IsPNG)
		}
		_ = kind
		return nil
	default:
		return fmt.Errorf("%s: unsupported container %q", path, fh.Kind)
	}
}
