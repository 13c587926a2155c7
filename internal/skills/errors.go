package skills

import "fmt"

// TaxonomyError represents an invalid or unreadable taxonomy definition
type TaxonomyError struct {
	Message string
	Cause   error
}

func (e *TaxonomyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("taxonomy error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("taxonomy error: %s", e.Message)
}

func (e *TaxonomyError) Unwrap() error {
	return e.Cause
}
