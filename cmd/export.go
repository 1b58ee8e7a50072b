package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bikedash/infra/chart"
	"github.com/kilianp07/bikedash/pkg/export"
)

func newExportCmd(opts *options) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard numbers as CSV or JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			return withOutput(cmd.OutOrStdout(), out, func(w io.Writer) error {
				switch format {
				case "csv":
					return export.WriteCSV(w, d)
				case "json":
					return export.WriteJSON(w, d)
				default:
					return fmt.Errorf("unknown format %s", format)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newRenderCmd(opts *options) *cobra.Command {
	var out string
	var size chart.Options
	cmd := &cobra.Command{
		Use:       "render <chart>",
		Short:     "Render a chart as PNG",
		Args:      cobra.ExactArgs(1),
		ValidArgs: chart.Names,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			d, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				out = name + ".png"
			}
			var buf bytes.Buffer
			if err := chart.Render(&buf, name, d, size); err != nil {
				return err
			}
			return withOutput(cmd.OutOrStdout(), out, func(w io.Writer) error {
				_, err := buf.WriteTo(w)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <chart>.png, - for stdout)")
	cmd.Flags().IntVar(&size.Width, "width", 800, "image width")
	cmd.Flags().IntVar(&size.Height, "height", 400, "image height")
	return cmd
}

// withOutput runs fn on the file at path, or on stdout when path is empty or "-".
func withOutput(stdout io.Writer, path string, fn func(io.Writer) error) (err error) {
	if path == "" || path == "-" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}
