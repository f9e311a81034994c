package service

import (
	"errors"
	"math"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/pkg/validator"
)

// validationError converts a struct validation failure into a ValidationError
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fe *validator.FieldError
	if errors.As(err, &fe) {
		return apperrors.Validation(fe.Field, fe.Message)
	}
	return apperrors.Validation("", err.Error())
}

// isValidAmount reports whether v is a finite, non-negative amount
func isValidAmount(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// round2 rounds half away from zero to two decimals
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
