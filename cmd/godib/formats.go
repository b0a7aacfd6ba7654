package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/paulcor/godib/internal/format"
	"github.com/spf13/cobra"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "formats",
		Short:        "List the recognized container formats",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runFormats,
	}
}

func runFormats(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tDESCRIPTION")
	for _, fh := range format.NewRegistry().Formats() {
		fmt.Fprintf(w, "%s\t%s\n", fh.Kind, fh.Description)
	}
	return w.Flush()
}
