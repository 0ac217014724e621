package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
)

func newCompositeCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "composite <photo-url>",
		Short: "Frame a photo on the signature background",
		Long: `Composite downloads the photo, fits it into the circular frame on the
signature background and prints the result as a PNG data URI, or writes the
PNG to --out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := c.newDeps(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close(ctx, c.log)

			uri, err := d.compositor.Composite(ctx, args[0])
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), uri)
				return err
			}

			img, err := imageproxy.ParseDataURI(uri)
			if err != nil {
				return err
			}
			return os.WriteFile(out, img.Data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the PNG to this file")
	return cmd
}
