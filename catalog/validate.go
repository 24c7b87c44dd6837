package catalog

import (
	"fmt"
	"unicode/utf8"
)

const (
	maxNameLen        = 255
	maxDescriptionLen = 10000
	maxBarcodeLen     = 64
	maxPromptTextLen  = 20000
)

// validateProductInput checks product field bounds before insert/update.
func validateProductInput(p *Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(p.Name) > maxNameLen {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, maxNameLen)
	}
	if utf8.RuneCountInString(p.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, maxDescriptionLen)
	}
	if len(p.EAN) > maxBarcodeLen {
		return fmt.Errorf("%w: ean exceeds %d characters", ErrInvalidInput, maxBarcodeLen)
	}
	if len(p.UPC) > maxBarcodeLen {
		return fmt.Errorf("%w: upc exceeds %d characters", ErrInvalidInput, maxBarcodeLen)
	}
	return nil
}

// validateDirectoryInput checks taxonomy entry bounds. Prompts require
// non-empty text.
func validateDirectoryInput(kind string, d *Directory) error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(d.Name) > maxNameLen {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, maxNameLen)
	}
	if kind == "prompts" {
		if d.Text == "" {
			return fmt.Errorf("%w: prompt text is required", ErrInvalidInput)
		}
		if utf8.RuneCountInString(d.Text) > maxPromptTextLen {
			return fmt.Errorf("%w: prompt text exceeds %d characters", ErrInvalidInput, maxPromptTextLen)
		}
	}
	return nil
}
