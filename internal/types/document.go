// Package types provides type definitions for structured data used throughout the resume-screener system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// Document is a candidate resume or any other text to be scored against a job description.
type Document struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"` // Known category, skips classification when set
}

// UnmarshalJSON decodes a document leniently: a text field that is not a JSON
// string is treated as empty rather than failing the whole payload.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Text     json.RawMessage `json:"text"`
		Category string          `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	d.ID = raw.ID
	d.Category = raw.Category
	d.Text = ""
	if len(raw.Text) > 0 {
		var text string
		if err := json.Unmarshal(raw.Text, &text); err == nil {
			d.Text = text
		}
	}
	return nil
}
