package model

import (
	"io"

	"github.com/valyala/fasttemplate"
)

// Template categories.  Each category corresponds to one kind of
// notification the service emits.
const (
	CategoryBooking      = "booking"
	CategoryStatusUpdate = "status-update"
	CategoryReminder     = "reminder"
)

// ValidCategory reports whether c is a known template category.
func ValidCategory(c string) bool {
	return c == CategoryBooking || c == CategoryStatusUpdate || c == CategoryReminder
}

// EmailTemplate holds the subject and body text used for
// notification messages.  Placeholders of the form {{name}} in
// Subject and Body are substituted at render time.  Variables
// documents the placeholders a template expects along with a short
// description of each.  Templates flagged IsDefault are seeded by
// the system and protected from deletion.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human-readable template name.
//  Category  – one of booking / status-update / reminder.
//  Subject   – message subject line, may contain placeholders.
//  Body      – message body, may contain placeholders.
//  Variables – placeholder name -> description dictionary.
//  IsDefault – seeded template, cannot be deleted.
type EmailTemplate struct {
	ID        uint64            `json:"id"`        // email_templates.id
	Name      string            `json:"name"`      // email_templates.name
	Category  string            `json:"category"`  // email_templates.category
	Subject   string            `json:"subject"`   // email_templates.subject
	Body      string            `json:"body"`      // email_templates.body
	Variables map[string]string `json:"variables"` // email_templates.variables (JSON column)
	IsDefault bool              `json:"isDefault"` // email_templates.is_default
}

// Render substitutes the given variable values into the template's
// subject and body.  Placeholders without a supplied value are kept
// verbatim so an operator can spot a missing variable in the output.
func (t EmailTemplate) Render(vars map[string]string) (subject, body string) {
	return renderText(t.Subject, vars), renderText(t.Body, vars)
}

func renderText(text string, vars map[string]string) string {
	return fasttemplate.ExecuteFuncString(text, "{{", "}}", func(w io.Writer, tag string) (int, error) {
		if v, ok := vars[tag]; ok {
			return w.Write([]byte(v))
		}
		return w.Write([]byte("{{" + tag + "}}"))
	})
}
