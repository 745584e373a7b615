package validation

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/types"
)

const maxEmailLength = 254

// ValidateLead checks a lead-capture submission using the default options
func ValidateLead(l model.Lead) error {
	return ValidateLeadWithOptions(l, DefaultValidationOptions())
}

// ValidateLeadWithOptions checks a lead-capture submission.
// Newsletter sign-ups only need an email address.
func ValidateLeadWithOptions(l model.Lead, opts ValidationOptions) error {
	var errs Errors

	if !l.Kind.Valid() {
		errs = append(errs, &Error{Field: "kind", Reason: fmt.Sprintf("unknown lead kind %q", l.Kind)})
	}

	email := strings.TrimSpace(l.Email)
	switch {
	case email == "":
		errs = append(errs, &Error{Field: "email", Reason: "required"})
	case len(email) > maxEmailLength:
		errs = append(errs, &Error{Field: "email", Reason: "too long"})
	default:
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			errs = append(errs, &Error{Field: "email", Reason: "not a valid address"})
		}
	}

	if l.Kind != types.LeadNewsletter && strings.TrimSpace(l.Name) == "" {
		errs = append(errs, &Error{Field: "name", Reason: "required"})
	}

	if opts.MaxMessageLength > 0 && len(l.Message) > opts.MaxMessageLength {
		errs = append(errs, &Error{Field: "message", Reason: fmt.Sprintf("longer than %d characters", opts.MaxMessageLength)})
	}
	for k, v := range l.Fields {
		if opts.MaxMessageLength > 0 && len(v) > opts.MaxMessageLength {
			errs = append(errs, &Error{Field: "fields." + k, Reason: fmt.Sprintf("longer than %d characters", opts.MaxMessageLength)})
		}
	}

	return finish("lead", errs)
}
