package community

import (
	"strings"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// validate checks request structs before they reach the domain layer
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest validates a request struct and converts validator errors
// into a domain validation error naming the offending fields
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return shared.NewDomainError("VALIDATION_ERROR", "Request validation failed")
	}

	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field()+" ("+e.Tag()+")")
	}
	return shared.NewDomainError("VALIDATION_ERROR", "Request validation failed: "+strings.Join(fields, ", "))
}
