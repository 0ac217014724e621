package signature

// AssetBaseURL hosts every static image the built-in templates reference.
const AssetBaseURL = "https://cms-frontend-api.appmaker.xyz/api/media/file/"

const (
	PlaceholderPhotoURL = AssetBaseURL + "user-placeholder.png"
	AccentURL           = AssetBaseURL + "signature-asset.png"
	LogoURL             = AssetBaseURL + "appmaker-logo.png"

	PhoneIconURL    = AssetBaseURL + "phone.png"
	CalendarIconURL = AssetBaseURL + "calender.png"
	LinkedInIconURL = AssetBaseURL + "linkedin.png"

	PhoneRoundIconURL    = AssetBaseURL + "phone-round.png"
	CalendarRoundIconURL = AssetBaseURL + "calender-round.png"
	LinkedInRoundIconURL = AssetBaseURL + "linkedin-round.png"
)

// Partner is one logo in the "Trusted by" footer.
type Partner struct {
	Name    string
	LogoURL string
}

// Partners returns the footer logos in display order. The jockey variant
// differs between templates, so callers pick it with the jockey argument.
func Partners(jockey string) []Partner {
	return []Partner{
		{Name: "Levis", LogoURL: AssetBaseURL + "Levis.png"},
		{Name: "Jockey", LogoURL: AssetBaseURL + jockey},
		{Name: "Puma", LogoURL: AssetBaseURL + "gnc.png"},
		{Name: "Nike", LogoURL: AssetBaseURL + "greenworks.png"},
	}
}

// TrustedBy is the footer claim shared by every template.
const TrustedBy = "Trusted by 400+ Shopify Brands"
