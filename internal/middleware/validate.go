package middleware

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
)

// ValidationInterceptor checks request messages against their validate tags
// before the handler runs.
func ValidationInterceptor(v *validator.Validate) connect.UnaryInterceptorFunc {
	if v == nil {
		v = NewValidator()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if err := v.Struct(req.Any()); err != nil {
				var invalid *validator.InvalidValidationError
				if errors.As(err, &invalid) {
					// Not a struct: nothing to validate.
					return next(ctx, req)
				}
				return nil, connect.NewError(connect.CodeInvalidArgument, describe(err))
			}
			return next(ctx, req)
		}
	}
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func describe(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", f.Field(), f.Tag(), f.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", f.Field(), f.Tag()))
		}
	}
	return errors.New("invalid request: " + strings.Join(msgs, "; "))
}
