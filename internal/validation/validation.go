// Package validation wraps go-playground/validator with the portal's custom
// rules and converts failures into field-level *apperror.AppError values.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"huronportal/internal/apperror"
)

var (
	usernamePattern   = regexp.MustCompile(`^[a-z0-9._-]+$`)
	numeroOLPattern   = regexp.MustCompile(`^[A-Z0-9-]+$`)
	postalCodePattern = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z][ -]?\d[A-Za-z]\d$`)
)

// Provinces lists the Canadian province and territory codes accepted on clients.
var Provinces = []string{"QC", "ON", "AB", "BC", "MB", "NB", "NL", "NT", "NS", "NU", "PE", "SK", "YT"}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Rotation limits travel as decimals; validate them as floats.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	mustRegister("username", matches(usernamePattern))
	mustRegister("numero_ol", matches(numeroOLPattern))
	mustRegister("postal_code", matches(postalCodePattern))
	mustRegister("province", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, p := range Provinces {
			if s == p {
				return true
			}
		}
		return false
	})
	// uuid_or_empty accepts a UUID or the empty string.
	mustRegister("uuid_or_empty", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		return uuid.Validate(s) == nil
	})
	// rotation accepts the -1 "unlimited" sentinel or any non-negative limit.
	mustRegister("rotation", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == -1 || f >= 0
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Struct validates s against its `validate` tags. A nil return means valid;
// otherwise the error is an *apperror.AppError of type validation listing every
// offending field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewValidation("Invalid data", apperror.FieldError{Message: err.Error()})
	}

	details := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperror.FieldError{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return apperror.NewValidation("Invalid data", details...)
}

// fieldPath strips the top-level struct name from the namespace, e.g.
// "CreateClientRequest.postalCode" becomes "postalCode".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "uuid", "uuid4", "uuid_or_empty":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "username":
		return fmt.Sprintf("%s may only contain lowercase letters, digits, dots, underscores and hyphens", field)
	case "numero_ol":
		return fmt.Sprintf("%s may only contain uppercase letters, digits and hyphens", field)
	case "postal_code":
		return fmt.Sprintf("%s must be a Canadian postal code (e.g. H4S 1Y9)", field)
	case "province":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.Join(Provinces, " "))
	case "rotation":
		return fmt.Sprintf("%s must be -1 (unlimited) or a non-negative value", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}

// NormalizePostalCode maps any accepted postal code input to its stored form:
// separators removed, letters uppercased.
func NormalizePostalCode(code string) string {
	code = strings.NewReplacer(" ", "", "-", "").Replace(code)
	return strings.ToUpper(code)
}

// NormalizeIdentity lowercases and trims usernames and emails so uniqueness is
// case-insensitive.
func NormalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
