// Package validation implements the server-side contract for creating
// announcements. Errors are fail-fast: only the first offending field is
// reported, in request field order.
package validation

import (
	"bytes"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/petspot/petspot-backend/internal/announcement/domain"
	"github.com/petspot/petspot-backend/pkg/httputil"
	"github.com/petspot/petspot-backend/pkg/validators"
)

// Validator checks create requests against a clock
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New creates a validator. A nil clock means time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}

	v := &Validator{
		validate: httputil.NewValidator(),
		now:      now,
	}

	// Registration only fails for empty or reserved tags
	mustRegister(v.validate, "lastseendate", func(fl validator.FieldLevel) bool {
		return validators.IsValidDate(fl.Field().String(), v.now())
	})
	mustRegister(v.validate, "email", func(fl validator.FieldLevel) bool {
		return validators.IsValidEmail(fl.Field().String())
	})
	mustRegister(v.validate, "phone", func(fl validator.FieldLevel) bool {
		return validators.IsValidPhone(fl.Field().String())
	})
	mustRegister(v.validate, "digits", func(fl validator.FieldLevel) bool {
		return validators.IsDigitsOnly(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Validate checks an already decoded request
func (v *Validator) Validate(req *domain.CreateAnnouncementRequest) error {
	return httputil.ValidateWith(v.validate, req, true)
}

// ValidateCreateAnnouncement decodes body, rejecting unknown top-level fields,
// then validates the result.
func (v *Validator) ValidateCreateAnnouncement(body []byte) (*domain.CreateAnnouncementRequest, error) {
	var req domain.CreateAnnouncementRequest
	if err := httputil.DecodeStrict(bytes.NewReader(body), &req); err != nil {
		return nil, err
	}
	if err := v.Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
