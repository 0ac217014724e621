package validator

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// RequiredString fails when value is empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MinLenString counts runes, not bytes.
func MinLenString(field, value string, minLen int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) >= minLen
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %d characters long", minLen),
			TranslationKey:    "validation.min_length",
			TranslationValues: map[string]any{"field": field, "min": minLen},
		},
	}
}

// MaxLenString counts runes, not bytes.
func MaxLenString(field, value string, maxLen int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= maxLen
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %d characters long", maxLen),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": maxLen},
		},
	}
}

// OneOf fails when value is not in allowed. An empty value fails too.
func OneOf(field, value string, allowed []string) Rule {
	return Rule{
		Check: func() bool {
			return slices.Contains(allowed, value)
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must be one of: " + strings.Join(allowed, ", "),
			TranslationKey: "validation.one_of",
			TranslationValues: map[string]any{
				"field":   field,
				"allowed": strings.Join(allowed, ", "),
			},
		},
	}
}

// NoWhitespace fails when value contains any space, tab or newline.
func NoWhitespace(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !strings.ContainsFunc(value, func(r rune) bool {
				return r == ' ' || r == '\t' || r == '\n' || r == '\r'
			})
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must not contain spaces",
			TranslationKey:    "validation.no_whitespace",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// When runs rule only if cond holds.
func When(cond bool, rule Rule) Rule {
	if cond {
		return rule
	}
	return Rule{Check: func() bool { return true }}
}
