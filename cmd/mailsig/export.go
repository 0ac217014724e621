package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailsig/handlers"
	"github.com/dmitrymomot/mailsig/pkg/browser"
	"github.com/dmitrymomot/mailsig/pkg/rasterexport"
	"github.com/dmitrymomot/mailsig/pkg/signature"
	"github.com/dmitrymomot/mailsig/pkg/templates"
)

var errStorageNotConfigured = errors.New("--upload needs S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY")

func newExportCmd(c *cli) *cobra.Command {
	var (
		in      signatureInput
		format  string
		outDir  string
		upload  bool
		timeout time.Duration
		ratio   float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the signature to a PNG or JPEG image",
		Example: `  mailsig export --example
  mailsig export -d signature.json --format jpeg --out ./build
  mailsig export -d signature.json --upload`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, ok := rasterexport.ParseFormat(format)
			if !ok {
				return fmt.Errorf("unknown format %q, want png or jpeg", format)
			}
			if ratio < 1 || ratio > rasterexport.MaxPixelRatio {
				return fmt.Errorf("--pixel-ratio must be between 1 and %d", rasterexport.MaxPixelRatio)
			}
			req, err := in.load(cmd)
			if err != nil {
				return err
			}
			if timeout <= 0 {
				timeout = c.cfg.ExportTimeout
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			d, err := c.newDeps(ctx, true)
			if err != nil {
				return err
			}
			defer d.Close(context.WithoutCancel(ctx), c.log)

			var sink rasterexport.Sink = rasterexport.FileSink{Dir: outDir}
			if upload {
				store, err := c.newStorage()
				if err != nil {
					return err
				}
				if store == nil {
					return errStorageNotConfigured
				}
				sink = rasterexport.StorageSink{Storage: store, Prefix: handlers.UploadPrefix}
			}

			b, err := c.newBrowser(ctx, false)
			if err != nil {
				return err
			}
			defer b.Close()

			file, err := c.export(ctx, b, d, req, rasterexport.Options{Format: f, PixelRatio: ratio}, sink)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), file.Location)
			return err
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "png", "image format: png or jpeg")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&upload, "upload", false, "store the image in S3 instead of a local file")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "export deadline (defaults to EXPORT_TIMEOUT)")
	cmd.Flags().Float64Var(&ratio, "pixel-ratio", rasterexport.DefaultPixelRatio, "device pixel ratio of the capture")
	return cmd
}

// export captures the interactive rendering of req in a fresh tab.
func (c *cli) export(ctx context.Context, b *browser.Browser, d *deps, req handlers.SignatureRequest, opts rasterexport.Options, sink rasterexport.Sink) (*rasterexport.File, error) {
	body, err := templates.RenderString(ctx, templates.Builtin().Lookup(req.TemplateID).Render(req.Data))
	if err != nil {
		return nil, err
	}

	tab, err := b.Open(ctx, browser.Document(c.cfg.BaseURL, body))
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	opts.Filename = signature.ExportFilename(req.Name)
	opts.Key = "cli"
	file, err := rasterexport.New(d.resolver, rasterexport.WithLogger(c.log)).Export(ctx, tab, handlers.ExportSelector, opts, sink)
	if err != nil {
		return nil, err
	}

	c.log.InfoContext(ctx, "signature exported",
		slog.String("format", string(opts.Format)),
		slog.String("location", file.Location),
	)
	return file, nil
}
