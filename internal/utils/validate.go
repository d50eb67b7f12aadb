package utils

import (
  "fmt"
  "strings"
  "github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs validator/v10 tag validation and flattens the result
// into a single user-facing error.
func ValidateStruct(s interface{}) error {
  if err := validate.Struct(s); err != nil {
    verrs, ok := err.(validator.ValidationErrors)
    if !ok {
      return err
    }
    fields := make([]string, 0, len(verrs))
    for _, fe := range verrs {
      fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
    }
    return fmt.Errorf("validation failed: %s", strings.Join(fields, ", "))
  }
  return nil
}

func ValidateVar(field interface{}, tag string) error {
  return validate.Var(field, tag)
}
