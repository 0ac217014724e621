package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailsig/handlers"
	"github.com/dmitrymomot/mailsig/pkg/signature"
	"github.com/dmitrymomot/mailsig/pkg/validator"
	"github.com/dmitrymomot/mailsig/views"
)

// signatureInput reads a signature from an optional JSON file and flags.
// Flags win over the file.
type signatureInput struct {
	file      string
	example   bool
	hidePhoto bool
	req       handlers.SignatureRequest
}

func (in *signatureInput) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&in.file, "data", "d", "", `JSON file with the signature fields ("-" reads stdin)`)
	f.BoolVar(&in.example, "example", false, "start from the example signature")
	f.StringVarP(&in.req.TemplateID, "template", "t", "", "template id (see mailsig templates)")
	f.StringVar(&in.req.Name, "name", "", "full name")
	f.StringVar(&in.req.Role, "role", "", "job title")
	f.StringVar(&in.req.Phone, "phone", "", "phone number")
	f.StringVar(&in.req.BookingLink, "booking-link", "", "meeting booking URL")
	f.StringVar(&in.req.LinkedInProfile, "linkedin", "", "LinkedIn profile URL or handle")
	f.StringVar(&in.req.PhotoURL, "photo", "", "photo URL or data URI")
	f.BoolVar(&in.hidePhoto, "no-photo", false, "leave the photo out")
}

// load merges the sources, then sanitizes and validates the result.
func (in *signatureInput) load(cmd *cobra.Command) (handlers.SignatureRequest, error) {
	var req handlers.SignatureRequest
	switch {
	case in.file != "":
		if err := readJSON(cmd, in.file, &req); err != nil {
			return req, err
		}
	case in.example:
		req.Data = signature.Example()
	}

	overlay := map[string]func(){
		"template":     func() { req.TemplateID = in.req.TemplateID },
		"name":         func() { req.Name = in.req.Name },
		"role":         func() { req.Role = in.req.Role },
		"phone":        func() { req.Phone = in.req.Phone },
		"booking-link": func() { req.BookingLink = in.req.BookingLink },
		"linkedin":     func() { req.LinkedInProfile = in.req.LinkedInProfile },
		"photo":        func() { req.PhotoURL = in.req.PhotoURL },
	}
	for name, apply := range overlay {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	if in.hidePhoto {
		req.ShowPhoto = signature.Bool(false)
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return req, describe(err)
	}
	return req, nil
}

func readJSON(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// describe turns validation failures into one readable line.
func describe(err error) error {
	errs := validator.ExtractValidationErrors(err)
	if len(errs) == 0 {
		return err
	}
	errs.Translate(views.Message)

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return errors.New(strings.Join(msgs, "; "))
}
