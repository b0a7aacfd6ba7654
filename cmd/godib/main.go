// Command godib inspects and converts BMP, ICO and CUR files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "godib",
		Short: "godib - BMP/ICO/CUR decoder, encoder and inspector",
	}
	root.AddCommand(newFormatsCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newConvertCmd())
	return root
}
