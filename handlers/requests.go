package handlers

import (
	"github.com/dmitrymomot/mailsig/pkg/signature"
	"github.com/dmitrymomot/mailsig/pkg/validator"
)

// SignatureRequest is the editor form: the signature fields plus the
// selected template. Unknown template ids fall back to the default.
type SignatureRequest struct {
	signature.Data
	TemplateID string `form:"template_id" json:"template_id,omitempty"`
}

func (r *SignatureRequest) Normalize() {
	r.Data = r.Data.Sanitize()
}

func (r *SignatureRequest) Validate() error {
	return r.Data.Validate()
}

// CompositeRequest asks for a photo framed on the signature background.
type CompositeRequest struct {
	URL string `form:"url" json:"url"`
}

func (r *CompositeRequest) Validate() error {
	return validator.Apply(
		validator.RequiredString("url", r.URL),
	)
}
