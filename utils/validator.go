package utils

import (
	"errors"
	"fmt"
	"regexp"

	"bootcamp-api/models"

	"github.com/go-playground/validator/v10"
)

var (
	emailRegex   = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)
	websiteRegex = regexp.MustCompile(`^https?://(www\.)?[-a-zA-Z0-9@:%._\+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_\+.~#?&/=]*)$`)
	indexSuffix  = regexp.MustCompile(`\[\d+\]`)
)

type messenger interface {
	ValidationMessages() map[string]string
}

// Validator wraps the go-playground validator with the record-specific rules.
type Validator struct {
	validate   *validator.Validate
	ratingText string
}

// NewValidator registers the custom tags: career, rating (bounded by ratingMin and
// ratingMax), website and mailbox.
func NewValidator(ratingMin, ratingMax float64) *Validator {
	v := validator.New()

	careers := map[string]bool{}
	for _, c := range models.Careers {
		careers[c] = true
	}

	v.RegisterValidation("career", func(fl validator.FieldLevel) bool {
		return careers[fl.Field().String()]
	})
	v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f >= ratingMin && f <= ratingMax
	})
	v.RegisterValidation("website", func(fl validator.FieldLevel) bool {
		return websiteRegex.MatchString(fl.Field().String())
	})
	v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})

	return &Validator{
		validate:   v,
		ratingText: fmt.Sprintf("Rating must be between %g and %g", ratingMin, ratingMax),
	}
}

// Struct validates s and returns a ValidationFailed error listing every violation.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var known map[string]string
	if m, ok := s.(messenger); ok {
		known = m.ValidationMessages()
	}

	seen := map[string]bool{}
	var messages []string
	for _, fe := range verrs {
		msg := v.message(fe, known)
		if !seen[msg] {
			seen[msg] = true
			messages = append(messages, msg)
		}
	}
	return ValidationFailed(messages...)
}

func (v *Validator) message(fe validator.FieldError, known map[string]string) string {
	if fe.Tag() == "rating" {
		return v.ratingText
	}
	key := indexSuffix.ReplaceAllString(fe.StructField(), "[]") + "." + fe.Tag()
	if msg, ok := known[key]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
