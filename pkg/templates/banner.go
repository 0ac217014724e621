package templates

import (
	"github.com/a-h/templ"

	"github.com/dmitrymomot/mailsig/pkg/signature"
)

// Banner puts the logo beside the card and closes with a gradient band.
type Banner struct{}

func (Banner) Metadata() Metadata {
	return Metadata{
		ID:          "banner",
		Name:        "Banner Template",
		Description: "Professional banner-style email signature with gradient separator",
	}
}

func (Banner) Render(d signature.Data) templ.Component {
	return component("banner", bannerView(d))
}

func (Banner) HTML(d signature.Data) string {
	return staticHTML("banner", bannerView(d))
}

func bannerView(d signature.Data) view {
	return newView(d, icons{
		Phone:    signature.PhoneRoundIconURL,
		Calendar: signature.CalendarRoundIconURL,
		LinkedIn: signature.LinkedInRoundIconURL,
	}, "jockey-1.png")
}
