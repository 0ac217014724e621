package templates

import (
	"embed"
	"html/template"
	"strings"

	"github.com/dmitrymomot/mailsig/pkg/signature"
)

//go:embed html/*.html
var files embed.FS

var (
	interactive = template.Must(template.ParseFS(files, "html/*.render.html"))
	email       = template.Must(template.ParseFS(files, "html/*.email.html"))
)

// view is the template input. Every predicate a template branches on lives
// here so both producers of a template see identical values.
type view struct {
	Partners     []signature.Partner
	Name         string
	Role         string
	Phone        string
	PhoneHref    template.URL
	BookingHref  string
	LinkedInHref string
	LinkedInText string
	Photo        template.URL
	PhotoAlt     string
	Accent       string
	Logo         string
	Icons        icons
	ShowPhoto    bool
}

type icons struct {
	Phone    string
	Calendar string
	LinkedIn string
}

func (v view) HasPhone() bool    { return v.Phone != "" }
func (v view) HasBooking() bool  { return v.BookingHref != "" }
func (v view) HasLinkedIn() bool { return v.LinkedInHref != "" }

// HasContacts reports whether any contact block renders.
func (v view) HasContacts() bool {
	return v.HasPhone() || v.HasBooking() || v.HasLinkedIn()
}

// ContactColspan spans the photo column when it is present.
func (v view) ContactColspan() int {
	if v.ShowPhoto {
		return 2
	}
	return 1
}

func newView(d signature.Data, ic icons, jockey string) view {
	v := view{
		Partners:     signature.Partners(jockey),
		Name:         d.Name,
		Role:         d.Role,
		Phone:        d.Phone,
		PhoneHref:    template.URL(d.PhoneHref()),
		BookingHref:  d.BookingHref(),
		LinkedInHref: d.LinkedInHref(),
		LinkedInText: d.LinkedInText(),
		ShowPhoto:    d.PhotoVisible(),
		Accent:       signature.AccentURL,
		Logo:         signature.LogoURL,
		Icons:        ic,
	}
	if v.ShowPhoto {
		v.Photo = imageURL(d.PhotoSource())
		v.PhotoAlt = d.Name
		if d.PhotoURL == "" {
			v.PhotoAlt = "Profile"
		}
	}
	return v
}

// imageURL admits the references a photo may legitimately use: http(s),
// data:image, blob and relative paths. Anything else becomes the placeholder.
func imageURL(src string) template.URL {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "blob:"):
		return template.URL(src)
	}
	if i := strings.IndexAny(src, ":/?#"); i >= 0 && src[i] == ':' {
		return template.URL(signature.PlaceholderPhotoURL)
	}
	return template.URL(src)
}
