package validator

// Validator validates annotated structs.
type Validator interface {
	// Validate returns a field-to-message error when data fails validation.
	Validate(data any) error
}
