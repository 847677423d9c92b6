package validate

// This package adds struct and field validation as a thin wrapper around the go-playground/validator package.
//
// e.g. internal/config/config.go
//   type Settings struct {
//       FocusMinutes int     `yaml:"focus_minutes" validate:"gt=0,lte=1440"`
//       ...
//   }
//
// On top of the built-in tags it registers "finite", which rejects NaN and
// ±Inf floats. Numeric input coming from text fields is checked with
// Var(x, "finite,gt=0").

import (
	"math"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails for empty tags or nil funcs.
		_ = validatorInst.RegisterValidation("finite", isFinite)
	})
	return validatorInst
}

// isFinite reports whether a float field is neither NaN nor infinite.
// Non-float kinds pass unchanged.
func isFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}
