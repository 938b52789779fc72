// Package domain provides core types and business rules for the company
// validation process. It defines the validation request, the records fetched
// from the legal-entity and ownership registries, the terminal status
// enumeration, and the injected rule configuration the orchestrator consumes.
// All types are immutable once created; workflow state is derived, never
// mutated in place.
package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationRequest identifies one validation run. It is created once per
// incoming event and lives unchanged for the duration of the run.
type ValidationRequest struct {
	// ProcessID uniquely identifies this validation run.
	ProcessID string `json:"processId" validate:"required,uuid4"`

	// Rut is the national tax identifier of the company under validation,
	// format "<number>-<check digit>".
	Rut string `json:"rut" validate:"required,rut"`

	// CustomerCode identifies the customer in the onboarding channel.
	CustomerCode string `json:"customerCode" validate:"required"`

	// Product is the financial product the company is applying for.
	Product string `json:"product" validate:"required"`

	// ClientID identifies the requesting client application.
	ClientID string `json:"clientId" validate:"required"`

	// AuthCookie and CSRFToken authenticate status-update and notification
	// calls made on behalf of the applicant's session.
	AuthCookie string `json:"cookie" validate:"required"`
	CSRFToken  string `json:"csrftoken" validate:"required"`
}

// Validate checks the request against its struct constraints.
func (r ValidationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

func init() {
	// rut validates the "<number>-<check digit>" format. The check digit is
	// 0-9 or K; the numeric part must parse as a positive integer.
	validate.RegisterValidation("rut", func(fl validator.FieldLevel) bool { //nolint:errcheck // static tag registration
		_, err := NumericRut(fl.Field().String())
		return err == nil
	})
}

// NumericRut extracts the numeric portion of a RUT, the part before the
// check-digit separator. Used for Pyme threshold classification.
func NumericRut(rut string) (int64, error) {
	head, _, found := strings.Cut(rut, "-")
	if !found {
		return 0, fmt.Errorf("%w: %q has no check digit separator", ErrInvalidRut, rut)
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(head, ".", ""), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRut, rut)
	}
	return n, nil
}
