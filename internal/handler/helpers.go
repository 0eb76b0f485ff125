package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apierror"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps domain error kinds to HTTP statuses. Errors without a
// kind are internal (DB, driver): they get logged and answered with a
// generic 500 so SQL text never reaches a client.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrAlreadyOpen),
		errors.Is(err, apperr.ErrAlreadyClosed),
		errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrInsufficientPayment),
		errors.Is(err, apperr.ErrInvalidDiscount):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrInvalidArgument):
		status = http.StatusBadRequest
	default:
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}
