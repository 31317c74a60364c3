package validate

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/golaudo/internal/brief"
)

// FieldError names one missing or invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string { return f.Field + ": " + f.Message }

// Error collects every field problem of a request. Nothing should be
// rendered when it is returned.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// ValidateRequest checks the fields generation cannot proceed without.
// Unknown material or packaging codes are not errors here; they surface as
// placeholders in the rendered item.
func ValidateRequest(req brief.Request) error {
	var fields []FieldError
	if strings.TrimSpace(req.SealNumber) == "" {
		fields = append(fields, FieldError{Field: "seal_number", Message: "required"})
	}
	if len(req.Items) == 0 {
		fields = append(fields, FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, it := range req.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if it.Quantity < 1 {
			msg := "must be a whole number of at least 1"
			if it.QuantityRaw != "" {
				msg += fmt.Sprintf(" (got %q)", it.QuantityRaw)
			}
			fields = append(fields, FieldError{Field: prefix + "quantity", Message: msg})
		}
		if strings.TrimSpace(it.Material) == "" {
			fields = append(fields, FieldError{Field: prefix + "material", Message: "required"})
		}
		if strings.TrimSpace(it.Packaging) == "" {
			fields = append(fields, FieldError{Field: prefix + "packaging", Message: "required"})
		}
		if strings.TrimSpace(it.Reference) == "" {
			fields = append(fields, FieldError{Field: prefix + "reference", Message: "required"})
		}
	}
	for i, im := range req.Images {
		if strings.TrimSpace(im.Path) == "" {
			fields = append(fields, FieldError{Field: fmt.Sprintf("images[%d].path", i), Message: "required"})
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}
