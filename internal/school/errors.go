package school

import (
	"errors"
	"fmt"

	"classroom/internal/model"
)

func isClientError(err error) bool {
	var verr *model.ValidationError
	return errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrConflict) || errors.As(err, &verr)
}

// invalidRef reports a reference to a record that does not exist.
func invalidRef(field, entity string, id int) error {
	return model.NewValidationError(model.FieldError{Field: field, Error: fmt.Sprintf("unknown %s %d", entity, id)})
}

// asRef turns a NotFound from a referenced lookup into a validation error on
// field.
func asRef(err error, field, entity string, id int) error {
	if errors.Is(err, model.ErrNotFound) {
		return invalidRef(field, entity, id)
	}
	return err
}
