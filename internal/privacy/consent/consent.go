// Package consent describes the comment-cookie consent checkbox shown on
// review, reply and vendor feedback forms. Rendering is left to the host.
package consent

import (
	"context"

	"reviewprivacy/pkg/requestcontext"
)

const (
	FieldID    = "wp-comment-cookies-consent"
	FieldValue = "yes"
	FieldLabel = "Save my name, email, and website in this browser for the next time I comment."
	// CSSClass is the wrapper class hosts use to style the checkbox row.
	CSSClass = "comment-form-cookies-consent"
)

// Field is the checkbox descriptor handed to the form renderer.
type Field struct {
	ID      string
	Name    string
	Value   string
	Label   string
	Class   string
	Checked bool
}

// Checkbox returns the consent field for the current request. It is checked
// by default only for signed-in users.
func Checkbox(ctx context.Context) Field {
	return Field{
		ID:      FieldID,
		Name:    FieldID,
		Value:   FieldValue,
		Label:   FieldLabel,
		Class:   CSSClass,
		Checked: requestcontext.UserID(ctx) != 0,
	}
}

// Granted reports whether a submitted form value means the author consented.
func Granted(submitted string) bool {
	return submitted == FieldValue
}
