package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/paulcor/godib/bmp"
	"github.com/paulcor/godib/dib"
	"github.com/paulcor/godib/icocur"
	"github.com/paulcor/godib/internal/format"
	"github.com/paulcor/godib/quant"
	"github.com/paulcor/godib/rimage"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var outFormat string
	var outKind string

	cmd := &cobra.Command{
		Use:          "convert SRC DST",
		Short:        "Decode a BMP/ICO/CUR file and re-encode it",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], args[1], outFormat, outKind)
		},
	}
	cmd.Flags().StringVar(&outFormat, "pixel-format", "rgb24",
		"output pixel format for bmp output: rgb24, rgba32, pal1, pal1bw, pal4, pal8, pal8red, pal8grey (ico/cur output picks its own)")
	cmd.Flags().StringVar(&outKind, "kind", "",
		"output container: bmp, ico, cur (default: same as destination file extension)")
	return cmd
}

func parsePixelFormat(s string) (dib.Format, error) {
	switch strings.ToLower(s) {
	case "rgb24":
		return dib.Rgb24, nil
	case "rgba32":
		return dib.Rgba32, nil
	case "pal1":
		return dib.Pal1, nil
	case "pal1bw":
		return dib.Pal1BW, nil
	case "pal4":
		return dib.Pal4, nil
	case "pal8":
		return dib.Pal8, nil
	case "pal8red":
		return dib.Pal8Red, nil
	case "pal8grey":
		return dib.Pal8Grey, nil
	default:
		return 0, fmt.Errorf("unrecognized pixel format %q", s)
	}
}

func kindFromPath(explicit, path string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i+1:])
}

func runConvert(srcPath, dstPath, pixelFormat, kind string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	fh, ok := format.NewRegistry().Sniff(data)
	if !ok {
		return fmt.Errorf("%s: not a recognized BMP/ICO/CUR file", srcPath)
	}

	var img *rimage.Image
	switch fh.Kind {
	case "bmp":
		img, err = (&bmp.Codec{}).Decode(newReaderFor(data))
	case "ico", "cur":
		img, err = (&icocur.Codec{}).Decode(newReaderFor(data), -1)
	default:
		return fmt.Errorf("%s: unsupported source container %q", srcPath, fh.Kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", srcPath, err)
	}

	pxFormat, err := parsePixelFormat(pixelFormat)
	if err != nil {
		return err
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer out.Close()

	q := quant.MedianCut{}
	switch kindFromPath(kind, dstPath) {
	case "bmp":
		return (&bmp.Codec{}).Encode(out, img, pxFormat, q)
	case "ico":
		return (&icocur.Codec{}).Encode(out, img, icocur.KindICO, q)
	case "cur":
		return (&icocur.Codec{}).Encode(out, img, icocur.KindCUR, q)
	default:
		return fmt.Errorf("%s: cannot determine output container (pass --kind)", dstPath)
	}
}
