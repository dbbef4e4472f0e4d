package validator

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/shopspring/decimal"
)

// Validator runs struct tag validation and reports failures as
// ValidationError app errors naming the offending JSON fields.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// decimal.Decimal is validated as a float so gte/lte tags work on money.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates req. The returned error, if any, is a *AppError with
// code VALID_2001.
func (v *Validator) Struct(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.ErrValidation(err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" "+fe.Tag())
	}
	sort.Strings(fields)
	return apperr.ErrValidation(strings.Join(fields, ", "))
}

// Fields returns the JSON names of the fields that failed, for tests and
// error payloads.
func Fields(err error) []string {
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperr.ErrCodeValidation || appErr.Details == "" {
		return nil
	}
	parts := strings.Split(appErr.Details, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.SplitN(p, " ", 2)[0])
	}
	return out
}
