package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(yamlName)
	})
	return validate
}

// yamlName reports fields by their yaml key so messages match the file.
func yamlName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Struct validates v against its `validate` tags and joins every failure
// into one error.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fieldError(fe))
	}
	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must not be empty", fe.Namespace())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %v", fe.Namespace(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation, got %v", fe.Namespace(), fe.Tag(), fe.Value())
	}
}
