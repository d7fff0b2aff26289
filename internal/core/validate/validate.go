// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// Title validates a checklist or item title is non-empty after trimming
// whitespace.
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// TitleField returns a criterio validator for titles.
func TitleField(field, title string) error {
	return criterio.Run(field, title, Title)
}

// ID validates an identifier is lowercase alphanumeric and non-empty,
// matching what randid generates.
func ID(id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	for _, r := range id {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if !isLower && !isDigit {
			return fmt.Errorf("id must be lowercase alphanumeric")
		}
	}
	return nil
}

// IDField returns a criterio validator for identifiers.
func IDField(field, id string) error {
	return criterio.Run(field, id, ID)
}
