package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/vietanh2810/event-ticketing-api/internal/domain"
)

type Err struct {
	Err            error             `json:"-"`
	HTTPStatusCode int               `json:"-"`
	Code           string            `json:"code"`
	Message        string            `json:"message"`
	Fields         map[string]string `json:"fields,omitempty"`
	RequestID      string            `json:"request_id,omitempty"`
}

func (e *Err) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return e.Message
}

// RenderErr writes e as the JSON body and aborts the handler chain. Server
// errors are logged with the underlying cause.
func RenderErr(ctx *gin.Context, e *Err) {
	e.RequestID = requestid.Get(ctx)

	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error(e.Message,
			zap.String("request_id", e.RequestID),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	e := &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Code:           "bad_request",
		Message:        err.Error(),
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		e.Code = "validation_failed"
		e.Fields = make(map[string]string, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			e.Fields[field] = fieldErr.Error()
		}
	}

	return e
}

func ErrValidation(err error) *Err {
	e := &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Code:           "validation_failed",
		Message:        err.Error(),
	}

	var missing *domain.MissingFieldError
	if errors.As(err, &missing) {
		e.Code = "missing_fields"
		e.Fields = make(map[string]string, len(missing.Fields))
		for _, field := range missing.Fields {
			e.Fields[field] = "cannot be blank"
		}
	}

	return e
}

// ErrSlugConflict stays a 400 so existing clients keep working; Code tells
// it apart from other validation failures.
func ErrSlugConflict(slug string) *Err {
	return &Err{
		HTTPStatusCode: http.StatusBadRequest,
		Code:           "slug_conflict",
		Message:        fmt.Sprintf("slug %q already exists", slug),
		Fields:         map[string]string{"slug": "already exists"},
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		Code:           "not_found",
		Message:        fmt.Sprintf("%s with %s %v not found", resource, key, value),
	}
}

func ErrStorageUnavailable(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		Code:           "storage_unavailable",
		Message:        "database connection failed",
	}
}

func ErrAssetUpload(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		Code:           "asset_upload_failed",
		Message:        "failed to upload ticket design",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		Code:           "internal_error",
		Message:        "internal server error",
	}
}
