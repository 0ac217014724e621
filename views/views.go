// Package views renders the editor page and its HTMX fragments.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mailsig/pkg/signature"
	"github.com/dmitrymomot/mailsig/pkg/templates"
	"github.com/dmitrymomot/mailsig/pkg/validator"
)

//go:embed html/*.html
var files embed.FS

//go:embed static
var static embed.FS

// Static holds the browser assets, served under /assets/.
func Static() fs.FS { return static }

// Element ids shared between the markup, the handlers and app.js.
const (
	PreviewID = "signature-preview"
	CodeID    = "signature-code"
	ErrorsID  = "form-errors"
)

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"checked": func(d signature.Data) bool { return d.PhotoVisible() },
}).ParseFS(files, "html/*.html"))

// Editor is everything the page and its fragments render from.
type Editor struct {
	Data       signature.Data
	TemplateID string
	Templates  []templates.Metadata
	Errors     validator.ValidationErrors
	// Preview is the interactive markup produced by the selected template.
	Preview template.HTML
	// Code is the email-safe HTML shown in the code box.
	Code           string
	Filename       string
	UploadsEnabled bool

	PreviewID string
	CodeID    string
	ErrorsID  string
}

// NewEditor renders the selected template for d.
func NewEditor(ctx context.Context, reg *templates.Registry, templateID string, d signature.Data) (Editor, error) {
	tpl := reg.Lookup(templateID)
	preview, err := templates.RenderString(ctx, tpl.Render(d))
	if err != nil {
		return Editor{}, err
	}
	return Editor{
		Data:       d,
		TemplateID: tpl.Metadata().ID,
		Templates:  reg.Metadata(),
		Preview:    template.HTML(preview),
		Code:       tpl.HTML(d),
		Filename:   signature.ExportFilename(d.Name),
		PreviewID:  PreviewID,
		CodeID:     CodeID,
		ErrorsID:   ErrorsID,
	}, nil
}

// Page is the full editor page.
func Page(e Editor) templ.Component { return component("page", e) }

// Preview is the live preview fragment.
func Preview(e Editor) templ.Component { return component("preview", e) }

// CodeBox is the HTML code box, swapped out of band after each preview.
func CodeBox(e Editor) templ.Component { return component("code-oob", e) }

// Errors lists validation errors next to the form. An empty list clears it.
func Errors(e Editor) templ.Component { return component("errors", e) }

// ErrorsOOB clears or refreshes the error list out of band.
func ErrorsOOB(e Editor) templ.Component { return component("errors-oob", e) }

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

var fieldLabels = map[string]string{
	"name":             "Name",
	"role":             "Role",
	"phone":            "Phone",
	"booking_link":     "Booking link",
	"linkedin_profile": "LinkedIn profile",
}

// Message turns a validation translation key into the sentence shown next
// to the form. Use it with ValidationErrors.Translate.
func Message(key string, values map[string]any) string {
	field, _ := values["field"].(string)
	label := fieldLabels[field]
	if label == "" {
		label = field
	}

	switch key {
	case "validation.required":
		return label + " is required"
	case "validation.max_length":
		return fmt.Sprintf("%s must be at most %v characters", label, values["max"])
	case "validation.min_length":
		return fmt.Sprintf("%s must be at least %v characters", label, values["min"])
	}
	return label + " is invalid"
}
