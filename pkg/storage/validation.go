package storage

import "fmt"

// FileValidationError is returned when an upload fails a ValidationRule.
type FileValidationError struct {
	Details map[string]any
	Field   string
	Code    string
	Message string
}

func (e *FileValidationError) Error() string {
	return e.Message
}

const (
	ErrCodeFileTooLarge = "file_too_large"
	ErrCodeInvalidMIME  = "invalid_mime"
	ErrCodeEmptyFile    = "empty_file"
)

// ValidationRule checks an upload before it is stored.
type ValidationRule interface {
	Validate(size int64, mimeType string) error
}

// Validate runs rules in order and returns the first failure.
func Validate(size int64, mimeType string, rules ...ValidationRule) error {
	for _, rule := range rules {
		if err := rule.Validate(size, mimeType); err != nil {
			return err
		}
	}
	return nil
}

type maxSizeRule struct {
	maxBytes int64
}

// MaxSize rejects uploads larger than n bytes.
func MaxSize(n int64) ValidationRule {
	return maxSizeRule{maxBytes: n}
}

func (r maxSizeRule) Validate(size int64, _ string) error {
	if size > r.maxBytes {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeFileTooLarge,
			Message: fmt.Sprintf("file size %d exceeds limit of %d bytes", size, r.maxBytes),
			Details: map[string]any{"limit": r.maxBytes, "got": size},
		}
	}
	return nil
}

type notEmptyRule struct{}

func NotEmpty() ValidationRule { return notEmptyRule{} }

func (notEmptyRule) Validate(size int64, _ string) error {
	if size <= 0 {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeEmptyFile,
			Message: "file is empty",
			Details: map[string]any{},
		}
	}
	return nil
}

type allowedTypesRule struct {
	patterns []string
}

// AllowedTypes accepts exact MIME types and "type/*" wildcards.
func AllowedTypes(patterns ...string) ValidationRule {
	return allowedTypesRule{patterns: patterns}
}

func (r allowedTypesRule) Validate(_ int64, mimeType string) error {
	if !matchesMIME(mimeType, r.patterns) {
		return &FileValidationError{
			Field:   "file",
			Code:    ErrCodeInvalidMIME,
			Message: fmt.Sprintf("file type %q is not allowed", mimeType),
			Details: map[string]any{"type": mimeType, "allowed": r.patterns},
		}
	}
	return nil
}

// ImageOnly is AllowedTypes("image/*").
func ImageOnly() ValidationRule {
	return AllowedTypes("image/*")
}
