package request

import "github.com/go-playground/validator/v10"

// validate is a single shared validator instance; go-playground/validator
// caches struct reflection internally, so sharing one instance across
// handlers avoids re-analyzing the same DTOs on every request.
var validate = validator.New()

// Validate runs struct-tag validation over any request DTO in this
// package.
func Validate(v interface{}) error {
	return validate.Struct(v)
}
