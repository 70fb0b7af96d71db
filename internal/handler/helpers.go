package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"sysmanager/internal/apierror"
	"sysmanager/internal/bon"
	"sysmanager/internal/dto"
	"sysmanager/internal/middleware"
	"sysmanager/internal/model"
	"sysmanager/internal/repository"
	"sysmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is validated as a number so tags like gt=0 and min=0 work.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// quantities must fit the held receipt columns, so they are checked on
	// the decimal itself rather than on the float the type func produces
	validate.RegisterStructValidation(validateCantitati,
		dto.AdaugaProdusRequest{}, dto.DeltaRequest{}, dto.SetCantitateRequest{})
}

func validateCantitati(sl validator.StructLevel) {
	check := func(q decimal.Decimal, field string) {
		if !model.CantitateStocabila(q) {
			sl.ReportError(q, field, field, "max_zecimale", strconv.Itoa(model.ZecimaleCantitate))
		}
	}
	switch r := sl.Current().Interface().(type) {
	case dto.AdaugaProdusRequest:
		check(r.Cantitate, "Cantitate")
	case dto.DeltaRequest:
		check(r.Delta, "Delta")
	case dto.SetCantitateRequest:
		check(r.Cantitate, "Cantitate")
	}
}

var (
	errLinieInexistenta = errors.New("linia nu există în bon")
	errLinieBlocata     = errors.New("linia nu poate fi modificată")
	errIDInvalid        = errors.New("identificator invalid")
)

// bindAndValidate binds the JSON body and runs the validator tags. It writes
// the error response itself and returns false when the request is rejected.
// An empty body is accepted when every field is optional.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("JSON invalid: "+err.Error()))
			return false
		}
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

func paramInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		return 0, errIDInvalid
	}
	return v, nil
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, errLinieInexistenta):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, bon.ErrInvalidArgument),
		errors.Is(err, service.ErrTerminalInvalid),
		errors.Is(err, errIDInvalid):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrBonGol), errors.Is(err, errLinieBlocata):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.Internal(c.GetString(middleware.RequestIDKey)))
	}
}
