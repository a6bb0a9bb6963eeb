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

func (v ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

type BlockValidator struct {
	validate *validator.Validate
	clock    clock.Clock
	logger   *logger.Logger
}

func NewBlockValidator(log *logger.Logger, clk clock.Clock) *BlockValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &BlockValidator{
		validate: v,
		clock:    clk,
		logger:   log,
	}
}

func (v *BlockValidator) ValidateRequest(req *model.BlockRequest) error {
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
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
