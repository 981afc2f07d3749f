package form

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Spok95/graindesk/internal/fault"
)

// Errors — ошибки по полям формы: путь поля -> сообщение.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e Errors) Merge(other Errors) Errors {
	for k, v := range other {
		e.Add(k, v)
	}
	return e
}

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// Err — nil, если ошибок нет, иначе ошибка класса validation.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return fault.Validation("form", e)
}

// FieldErrors достаёт Errors из цепочки, если это ошибка формы.
func FieldErrors(err error) (Errors, bool) {
	var e Errors
	ok := errors.As(err, &e)
	return e, ok
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("abn", func(fl validator.FieldLevel) bool {
		return ValidABN(fl.Field().String())
	})
	return v
}

// ValidABN — 11 цифр, пробелы допускаются.
func ValidABN(s string) bool {
	n := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			n++
		case r == ' ':
		default:
			return false
		}
	}
	return n == 11
}

// Validate проверяет теги `validate` структуры. Пути полей — по json-именам.
func Validate(v any) Errors {
	errs := Errors{}
	err := validate.Struct(v)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("_", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return errs
}

// "Buyer.contactDetails[0].email" -> "contactDetails[0].email"
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "abn":
		return "must be an 11-digit ABN"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}

// UniqueNames — имена в списке (например, контакты) не должны повторяться без учёта регистра.
func UniqueNames(path string, names []string) Errors {
	errs := Errors{}
	seen := map[string]bool{}
	for i, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		if seen[key] {
			errs.Add(fmt.Sprintf("%s[%d].name", path, i), "duplicate contact name")
			continue
		}
		seen[key] = true
	}
	return errs
}
