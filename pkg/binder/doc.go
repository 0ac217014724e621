// Package binder decodes request bodies into tagged structs.
//
// Form handles application/x-www-form-urlencoded and multipart/form-data using
// `form:"name"` and `file:"name"` tags. JSON decodes application/json strictly,
// rejecting unknown fields and trailing data.
//
// Embedded structs are walked, so a request type can embed a domain value:
//
//	type previewRequest struct {
//		signature.Data
//		TemplateID string `form:"template_id"`
//	}
//
// Scalar form fields bind the last submitted value. This keeps the hidden
// input plus checkbox pattern working: an unchecked box submits only the
// hidden "false", a checked one submits "false" then "true".
package binder
