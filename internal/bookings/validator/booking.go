package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"staybook/pkg/clock"
	"staybook/pkg/logger"
	"staybook/pkg/model"
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

// Fields flattens the errors into the {field: message} shape of the wire
// format.
func (v ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

type BookingValidator struct {
	validate *validator.Validate
	clock    clock.Clock
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger, clk clock.Clock) *BookingValidator {
	v := newValidate()

	if err := v.RegisterValidation("notblank", validateNotBlank); err != nil {
		log.Fatal("Failed to register 'notblank' validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		clock:    clk,
		logger:   log,
	}
}

// newValidate builds a validator that reports JSON field names, so the
// error map matches what the client actually sent.
func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateRequest covers both create and update: guest name constraints,
// presence of both dates, start strictly before end, both in the future.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if errs := validateDateRange(req.StartDate, req.EndDate, v.clock.Now()); len(errs) > 0 {
		return errs
	}

	return nil
}

func validateDateRange(start, end *time.Time, now time.Time) ValidationErrors {
	if start == nil || end == nil {
		// required tags catch this; kept as a guard for direct callers
		return ValidationErrors{
			{Field: "startDate", Message: "Start date and end date must be set"},
		}
	}

	var errs ValidationErrors
	if !start.Before(*end) {
		errs = append(errs, ValidationError{
			Field:   "startDate",
			Message: "Start date should be before end date",
		})
	}
	if !start.After(now) {
		errs = append(errs, ValidationError{
			Field:   "startDate",
			Message: "Start date must be in the future",
		})
	}
	if !end.After(now) {
		errs = append(errs, ValidationError{
			Field:   "endDate",
			Message: "End date must be in the future",
		})
	}
	return errs
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "notblank":
			message = fmt.Sprintf("%s must not be blank", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
