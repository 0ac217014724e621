package templates

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/mailsig/pkg/signature"
)

// Default is the accent header layout with a 112px photo and stacked contacts.
type Default struct{}

func (Default) Metadata() Metadata {
	return Metadata{
		ID:          "default",
		Name:        "Default Template",
		Description: "Clean and modern email signature template",
	}
}

func (Default) Render(d signature.Data) templ.Component {
	return component("default", defaultView(d))
}

func (Default) HTML(d signature.Data) string {
	return staticHTML("default", defaultView(d))
}

func defaultView(d signature.Data) view {
	return newView(d, icons{
		Phone:    signature.PhoneIconURL,
		Calendar: signature.CalendarIconURL,
		LinkedIn: signature.LinkedInIconURL,
	}, "jockey.png")
}
