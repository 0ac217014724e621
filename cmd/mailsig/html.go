package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailsig/pkg/clipboard"
	"github.com/dmitrymomot/mailsig/pkg/templates"
)

func newHTMLCmd(c *cli) *cobra.Command {
	var (
		in     signatureInput
		inline bool
	)

	cmd := &cobra.Command{
		Use:   "html",
		Short: "Print the email-safe signature HTML",
		Example: `  mailsig html --name "Jane Doe" --role "Head of Growth" --linkedin janedoe
  mailsig html -d signature.json --inline > signature.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := in.load(cmd)
			if err != nil {
				return err
			}

			markup := templates.Builtin().ExportHTML(req.TemplateID, req.Data)
			if inline {
				d, err := c.newDeps(cmd.Context(), true)
				if err != nil {
					return err
				}
				defer d.Close(cmd.Context(), c.log)

				markup, err = clipboard.New(d.resolver, clipboard.WithLogger(c.log)).Process(cmd.Context(), markup)
				if err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), markup)
			return err
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&inline, "inline", false, "embed every image as a data URI")
	return cmd
}
