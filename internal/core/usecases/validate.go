package usecases

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

var (
	validate     = newValidator()
	colorKeyword = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// linecolor accepts hex, rgb(a), hsl(a) or a CSS color keyword.
	_ = v.RegisterValidation("linecolor", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if colorKeyword.MatchString(s) {
			return true
		}
		return v.Var(s, "iscolor") == nil
	})
	return v
}

// ValidateRow checks a single uploaded row.
func ValidateRow(row domain.RouteRow) error {
	return describe(validate.Struct(row))
}

// ValidateRoute checks a resolved route, including coordinate ranges.
func ValidateRoute(rt domain.Route) error {
	return describe(validate.Struct(rt))
}

// describe flattens validator errors into one ErrInvalidRow.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRow, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidRow, strings.Join(parts, ", "))
}
