package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailsig/pkg/browser"
	"github.com/dmitrymomot/mailsig/pkg/clipboard"
	"github.com/dmitrymomot/mailsig/pkg/logger"
	"github.com/dmitrymomot/mailsig/pkg/templates"
)

var errCopyFailed = errors.New("could not copy the signature to the clipboard")

func newCopyCmd(c *cli) *cobra.Command {
	var (
		in      signatureInput
		headful bool
	)

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the self-contained signature HTML to the clipboard",
		Long: `Copy processes the signature so every image is embedded, then tries the
rich clipboard, a rendered selection and finally plain text. The first two
need a visible browser (--headful); without it the HTML source is copied as
text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req, err := in.load(cmd)
			if err != nil {
				return err
			}

			d, err := c.newDeps(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close(ctx, c.log)

			opts := []clipboard.Option{
				clipboard.WithText(clipboard.SystemText{}),
				clipboard.WithLogger(c.log),
			}
			if headful {
				b, err := c.newBrowser(ctx, true)
				if err != nil {
					c.log.WarnContext(ctx, "browser unavailable, copying plain text", logger.Error(err))
				} else {
					defer b.Close()
					tab, err := b.Open(ctx, browser.Document(c.cfg.BaseURL, ""))
					if err != nil {
						return err
					}
					defer tab.Close()
					opts = append(opts, clipboard.WithRich(tab), clipboard.WithLegacy(tab))
				}
			}

			markup := templates.Builtin().ExportHTML(req.TemplateID, req.Data)
			state, ok := clipboard.New(d.resolver, opts...).CopyState(ctx, markup)
			if !ok {
				return errCopyFailed
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "copied (%s)\n", state)
			return err
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&headful, "headful", false, "use a visible Chrome window for rich copy")
	return cmd
}
