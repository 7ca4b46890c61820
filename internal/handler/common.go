package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/exam-seat-allocator/internal/allocation"
	"github.com/iliyamo/exam-seat-allocator/internal/repository"
)

// requestTimeout bounds every database call made on behalf of a request.
const requestTimeout = 5 * time.Second

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindValid binds the JSON body into dst and runs struct validation.  On
// failure it has already written the 400 response and returns false.
func bindValid(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// pathID parses the :name path parameter as a positive integer.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional positive integer query parameter.  A missing
// parameter yields (nil, true).
func queryID(c echo.Context, name string) (*uint64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	return &id, true
}

func badID(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// notFoundErrors lists every entity specific "no such row" sentinel.
var notFoundErrors = []error{
	repository.ErrStudentNotFound,
	repository.ErrExamNotFound,
	repository.ErrHallNotFound,
	repository.ErrSeatNotFound,
	repository.ErrInvigilatorNotFound,
	repository.ErrAllocationNotFound,
	repository.ErrUserNotFound,
	repository.ErrNotFound,
}

// writeError maps repository and service errors onto status codes.
// Unknown errors become 500 with a generic message; the request logger
// records the detail.
func writeError(c echo.Context, err error) error {
	for _, nf := range notFoundErrors {
		if errors.Is(err, nf) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Error()})
		}
	}
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case errors.Is(err, repository.ErrReferenced):
		return c.JSON(http.StatusConflict, echo.Map{"error": "referenced by or referencing another record"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, allocation.ErrExamLocked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "auto-allocation already running for this exam"})
	case errors.Is(err, repository.ErrInvalidIdentifier),
		errors.Is(err, repository.ErrInvalidGrantLevel),
		errors.Is(err, repository.ErrNotSelect),
		errors.Is(err, repository.ErrMultiStatement):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "database timeout"})
	}
	log.Error().Err(err).Str("method", c.Request().Method).Str("route", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
