package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"anoa.com/learnhub/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

// FormatValidationError turns a binding error into a field level ValidationError.
func FormatValidationError(err error) *apperror.ValidationError {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]apperror.FieldError, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			fields = append(fields, apperror.FieldError{
				Field:   getFieldName(fieldError.Field()),
				Message: getFieldErrorMessage(fieldError),
			})
		}
		return &apperror.ValidationError{Fields: fields}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return apperror.Invalid(typeErr.Field, fmt.Sprintf("%s has an invalid type", typeErr.Field))
	case errors.As(err, &syntaxErr):
		return apperror.Invalid("body", "request body is not valid JSON")
	}

	return apperror.Invalid("body", err.Error())
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please provide a valid email address"
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return fmt.Sprintf("Invalid %s", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, getFieldName(fe.Param()))
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Email":           "email",
		"Password":        "password",
		"CurrentPassword": "currentPassword",
		"NewPassword":     "newPassword",
		"FirstName":       "firstName",
		"LastName":        "lastName",
		"PhoneNumber":     "phoneNumber",
		"DateOfBirth":     "dateOfBirth",
		"Reason":          "reason",
		"Status":          "status",
		"Rating":          "rating",
		"Comment":         "comment",
		"CourseID":        "courseId",
		"Amount":          "amount",
		"TransactionType": "transactionType",
		"PaymentMethod":   "paymentMethod",
		"Title":           "title",
		"Description":     "description",
		"Price":           "price",
		"Level":           "level",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
