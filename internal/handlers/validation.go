package handlers

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerValidatorsOnce sync.Once

// RegisterValidators teaches gin's validator about decimal amounts. It is safe to call
// more than once.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// decimal.Decimal is validated as its string form
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("decimal_positive", decimalPositive)
	})
}

func decimalPositive(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case string:
		d, err := decimal.NewFromString(v)
		return err == nil && d.IsPositive()
	case decimal.Decimal:
		return v.IsPositive()
	}
	return false
}
