package scenario

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/rustyeddy/backtester/internal/strategies"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports every problem with the scenario, not just the first.
func (s *Scenario) Validate() error {
	var errs error

	if err := newValidator().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = multierr.Append(errs, fieldError(fe))
			}
		} else {
			errs = multierr.Append(errs, err)
		}
	}

	if s.StartTS != "" && s.EndTS != "" {
		if _, _, err := s.Window(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	seen := make(map[string]bool, len(s.Strategies))
	for _, spec := range s.Strategies {
		if spec.ID != "" {
			if seen[spec.ID] {
				errs = multierr.Append(errs, fmt.Errorf("strategies: duplicate strategy_id %q", spec.ID))
			}
			seen[spec.ID] = true
		}
		if spec.Kind == "" {
			continue
		}
		if _, err := strategies.New(spec); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("strategies.%s: %w", spec.ID, err))
		}
	}

	return errs
}

func fieldError(fe validator.FieldError) error {
	// Drop the root struct name: "Scenario.universe.universe_id" -> "universe.universe_id".
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "gte":
		return fmt.Errorf("%s must be >= %s", field, fe.Param())
	default:
		return fmt.Errorf("%s failed %q validation", field, fe.Tag())
	}
}
