package validation

import (
	"errors"
	"strings"
)

// Errors is an Invalid result: one human-readable message per violated rule,
// in schema order.
type Errors struct {
	Messages []string
}

func (e *Errors) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// AsErrors unwraps err into *Errors when it carries a validation failure.
func AsErrors(err error) (*Errors, bool) {
	var ve *Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
