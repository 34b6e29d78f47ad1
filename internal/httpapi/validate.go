package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var messages = map[string]string{
	"required": "The field '%s' is required.",
	"gt":       "The field '%s' must be greater than %s.",
}

// validationError lists every failed field of s in a stable order.
func validationError(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, fieldMessage(e))
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, " "))
}

func fieldMessage(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", e.Field(), e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}
