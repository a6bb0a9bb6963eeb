package validator

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"staybook/pkg/clock"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{Output: io.Discard})
	return NewBookingValidator(log, clock.Fixed{Time: testNow})
}

func request(mutate func(*model.BookingRequest)) *model.BookingRequest {
	start := testNow.AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 7)
	req := &model.BookingRequest{
		GuestFirstName: "Alice",
		GuestLastName:  "Smith",
		StartDate:      &start,
		EndDate:        &end,
	}
	if mutate != nil {
		mutate(req)
	}
	return req
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*model.BookingRequest)
		wantFields map[string]string
	}{
		{
			name: "valid request",
		},
		{
			name:   "missing first name",
			mutate: func(r *model.BookingRequest) { r.GuestFirstName = "" },
			wantFields: map[string]string{
				"guestFirstName": "guestFirstName is required",
			},
		},
		{
			name:   "blank last name",
			mutate: func(r *model.BookingRequest) { r.GuestLastName = "   " },
			wantFields: map[string]string{
				"guestLastName": "guestLastName must not be blank",
			},
		},
		{
			name:   "first name too long",
			mutate: func(r *model.BookingRequest) { r.GuestFirstName = strings.Repeat("a", 31) },
			wantFields: map[string]string{
				"guestFirstName": "guestFirstName must be at most 30 characters",
			},
		},
		{
			name:   "missing dates",
			mutate: func(r *model.BookingRequest) { r.StartDate, r.EndDate = nil, nil },
			wantFields: map[string]string{
				"startDate": "startDate is required",
				"endDate":   "endDate is required",
			},
		},
		{
			name: "start equals end",
			mutate: func(r *model.BookingRequest) {
				d := testNow.AddDate(0, 1, 0)
				r.StartDate, r.EndDate = &d, &d
			},
			wantFields: map[string]string{
				"startDate": "Start date should be before end date",
			},
		},
		{
			name: "start after end",
			mutate: func(r *model.BookingRequest) {
				start := testNow.AddDate(0, 1, 7)
				end := testNow.AddDate(0, 1, 0)
				r.StartDate, r.EndDate = &start, &end
			},
			wantFields: map[string]string{
				"startDate": "Start date should be before end date",
			},
		},
		{
			name: "dates in the past",
			mutate: func(r *model.BookingRequest) {
				start := testNow.AddDate(0, -1, 0)
				end := testNow.AddDate(0, 0, -7)
				r.StartDate, r.EndDate = &start, &end
			},
			wantFields: map[string]string{
				"startDate": "Start date must be in the future",
				"endDate":   "End date must be in the future",
			},
		},
		{
			name: "start exactly now is not future",
			mutate: func(r *model.BookingRequest) {
				start := testNow
				r.StartDate = &start
			},
			wantFields: map[string]string{
				"startDate": "Start date must be in the future",
			},
		},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRequest(request(tt.mutate))

			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var validationErrs ValidationErrors
			if !errors.As(err, &validationErrs) {
				t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
			}

			got := validationErrs.Fields()
			for field, want := range tt.wantFields {
				if got[field] != want {
					t.Errorf("field %s: want %q, got %q", field, want, got[field])
				}
			}
		})
	}
}

func TestValidationErrorsError(t *testing.T) {
	errs := ValidationErrors{
		{Field: "startDate", Message: "Start date must be in the future"},
	}
	if !strings.Contains(errs.Error(), "startDate") {
		t.Errorf("error string should name the field, got %q", errs.Error())
	}
}
