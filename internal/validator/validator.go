// Package validator registers the custom struct tags used by request DTOs.
package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-schedule/internal/schedule"
)

// TagClock accepts wall-clock strings the schedule parser understands
const TagClock = "clock"

func validateClock(fl validator.FieldLevel) bool {
	_, err := schedule.ParseClock(fl.Field().String())
	return err == nil
}

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagClock, validateClock); err != nil {
		return fmt.Errorf("failed to register %q validation: %w", TagClock, err)
	}
	return nil
}

// RegisterGin adds the custom tags to gin's binding validator
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
	}
	return Register(v)
}

// New returns a standalone validator reading `binding` tags, for input that
// does not arrive through gin
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}
