package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct-tag validation over doc, then the cross-field
// checks validate tags alone can't express (unique agent ids).
func Validate(doc *YAMLConfig) error {
	if err := validate.Struct(doc); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			return &ValidationError{Field: fe.Namespace(), Err: fmt.Errorf("failed on %q", fe.Tag())}
		}
		return &ValidationError{Field: "", Err: err}
	}

	seen := make(map[string]struct{}, len(doc.Agents))
	for _, a := range doc.Agents {
		if _, dup := seen[a.ID]; dup {
			return &ValidationError{Field: "agents", Err: fmt.Errorf("duplicate agent id %q", a.ID)}
		}
		seen[a.ID] = struct{}{}
	}

	return nil
}
