package signature

import (
	"strings"
	"unicode"

	"github.com/dmitrymomot/mailsig/pkg/sanitizer"
	"github.com/dmitrymomot/mailsig/pkg/validator"
)

// Data is the value every renderer and exporter works from.
// A zero ShowPhoto means the photo is shown.
type Data struct {
	ShowPhoto       *bool  `form:"show_photo" json:"show_photo,omitempty"`
	PhotoURL        string `form:"photo_url" json:"photo_url"`
	Name            string `form:"name" json:"name"`
	Role            string `form:"role" json:"role"`
	Phone           string `form:"phone" json:"phone,omitempty"`
	BookingLink     string `form:"booking_link" json:"booking_link,omitempty"`
	LinkedInProfile string `form:"linkedin_profile" json:"linkedin_profile,omitempty"`
}

// Example returns the signature shown before the user types anything.
func Example() Data {
	return Data{
		Name:            "Abhyudaya Adulkar",
		Role:            "VP Sales",
		Phone:           "+91 98235 30341",
		LinkedInProfile: "linkedin.com/adulkarabhyudaya",
	}
}

// Bool returns a pointer to b, for ShowPhoto literals.
func Bool(b bool) *bool {
	return &b
}

// PhotoVisible reports whether the photo region is rendered.
func (d Data) PhotoVisible() bool {
	return d.ShowPhoto == nil || *d.ShowPhoto
}

// PhotoSource returns the photo reference to render, falling back to the placeholder.
func (d Data) PhotoSource() string {
	if d.PhotoURL != "" {
		return d.PhotoURL
	}
	return PlaceholderPhotoURL
}

// PhoneHref returns a dialable tel: URI, or "" without a phone.
func (d Data) PhoneHref() string {
	if d.Phone == "" {
		return ""
	}
	return "tel:" + strings.Join(strings.Fields(d.Phone), "")
}

// BookingHref returns the normalized booking link.
func (d Data) BookingHref() string {
	return NormalizeLink(d.BookingLink)
}

// LinkedInHref returns the normalized LinkedIn link.
func (d Data) LinkedInHref() string {
	return NormalizeLink(d.LinkedInProfile)
}

// LinkedInText returns the LinkedIn link text with scheme and "www." removed.
func (d Data) LinkedInText() string {
	return LinkedInDisplay(d.LinkedInProfile)
}

// NormalizeLink prefixes a scheme when the value does not start with "http".
// An empty value stays empty.
func NormalizeLink(v string) string {
	if v == "" || strings.HasPrefix(v, "http") {
		return v
	}
	return "https://" + v
}

// LinkedInDisplay strips a leading http(s):// and then a leading "www.".
func LinkedInDisplay(v string) string {
	switch {
	case strings.HasPrefix(v, "https://"):
		v = v[len("https://"):]
	case strings.HasPrefix(v, "http://"):
		v = v[len("http://"):]
	}
	return strings.TrimPrefix(v, "www.")
}

// ExportFilename returns the download name (without extension) for a signature owner.
func ExportFilename(name string) string {
	var b strings.Builder
	b.WriteString("email-signature-")
	for _, r := range name {
		if unicode.IsSpace(r) {
			b.WriteByte('-')
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Validate enforces the form-path requirements. Renderers never call it.
func (d Data) Validate() error {
	return validator.Apply(
		validator.RequiredString("name", d.Name),
		validator.RequiredString("role", d.Role),
		validator.MaxLenString("name", d.Name, 120),
		validator.MaxLenString("role", d.Role, 120),
		validator.MaxLenString("phone", d.Phone, 40),
		validator.MaxLenString("booking_link", d.BookingLink, 2048),
		validator.MaxLenString("linkedin_profile", d.LinkedInProfile, 2048),
	)
}

// Sanitize trims every field and strips markup from free-text fields.
// Photo references keep their exact bytes so data URIs survive.
func (d Data) Sanitize() Data {
	d.PhotoURL = strings.TrimSpace(d.PhotoURL)
	d.Name = sanitizer.StripHTML(strings.TrimSpace(d.Name))
	d.Role = sanitizer.StripHTML(strings.TrimSpace(d.Role))
	d.Phone = sanitizer.StripHTML(strings.TrimSpace(d.Phone))
	d.BookingLink = strings.TrimSpace(d.BookingLink)
	d.LinkedInProfile = strings.TrimSpace(d.LinkedInProfile)
	return d
}
