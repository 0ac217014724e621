// Package validator provides rule-based validation with translatable error messages.
//
// Rules are plain values built by constructor functions and evaluated by Apply:
//
//	err := validator.Apply(
//		validator.RequiredString("name", d.Name),
//		validator.MaxLenString("name", d.Name, 120),
//		validator.OneOf("format", format, []string{"png", "jpeg"}),
//	)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//		// ve.Get("name") returns the messages for a single field
//	}
//
// Each ValidationError carries a TranslationKey and TranslationValues so a caller
// can rewrite messages in place with ValidationErrors.Translate.
package validator
