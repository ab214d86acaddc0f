package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/familytree/pkg/family"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = validate.RegisterValidation("notblank", validateNotBlank)
	_ = validate.RegisterValidation("isodate", validateISODate)
	_ = validate.RegisterValidation("gender", validateGender)
	validate.RegisterStructValidation(validatePersonDates, PersonForm{})
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := family.ParseDate(fl.Field().String())
	return err == nil
}

func validateGender(fl validator.FieldLevel) bool {
	return family.Gender(fl.Field().String()).Valid()
}

// validatePersonDates rejects a death date earlier than the birth date.
func validatePersonDates(sl validator.StructLevel) {
	f := sl.Current().Interface().(PersonForm)
	birth, errB := family.ParseDate(f.DateOfBirth)
	death, errD := family.ParseDate(f.DateOfDeath)
	if errB != nil || errD != nil || birth.IsZero() || death.IsZero() {
		return
	}
	if death.Before(birth.Time) {
		sl.ReportError(f.DateOfDeath, "date_of_death", "DateOfDeath", "afterbirth", "")
	}
}

// Errors maps form field names to messages.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = e[f]
	}
	return strings.Join(msgs, "; ")
}

// check runs the validator on v and converts failures to Errors.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		if _, dup := out[fe.Field()]; !dup {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gender", "oneof":
		return fmt.Sprintf("%s must be Male, Female or Other", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD form", field)
	case "afterbirth":
		return "date of death cannot be before date of birth"
	case "uuid":
		return fmt.Sprintf("%s must be a person id", field)
	case "nefield":
		return "a person cannot be related to themselves"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
