package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gstrecon/pkg/logger"
	"gstrecon/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details flattens the errors into field -> message for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type ReconcileValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReconcileValidator(log *logger.Logger) *ReconcileValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	if err := v.RegisterValidation("column_list", validateColumnList); err != nil {
		log.Fatal("Failed to register 'column_list' validator", "error", err)
	}

	log.Info("Reconcile validator initialized successfully")

	return &ReconcileValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// validateColumnList requires at least one non-blank column name. Blank
// entries are allowed: they mark a mapping position that is not used.
func validateColumnList(fl validator.FieldLevel) bool {
	columns, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, c := range columns {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

func (v *ReconcileValidator) Validate(req *model.ReconcileRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReconcileValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()
		field := fieldPath(err)

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			if err.Kind() == reflect.Slice {
				message = fmt.Sprintf("%s must contain at least %s item(s)", field, err.Param())
			} else {
				message = fmt.Sprintf("%s must be at least %s", field, err.Param())
			}
		case "max":
			message = fmt.Sprintf("%s must contain at most %s item(s)", field, err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a 24-character hex id", field)
		case "unique":
			message = fmt.Sprintf("%s must not contain duplicates", field)
		case "column_list":
			message = fmt.Sprintf("%s must name at least one column", field)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}

// fieldPath drops the struct name from the namespace, so a nested element
// reads key_features[1] rather than ReconcileRequest.key_features[1].
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}
