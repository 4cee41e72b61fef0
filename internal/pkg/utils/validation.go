package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(fieldNameFromTags)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// fieldNameFromTags reports query or json names in validation messages so
// clients see the parameter they sent.
func fieldNameFromTags(field reflect.StructField) string {
	for _, tag := range []string{"query", "json"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}
