package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/inviteportal/internal/credentials"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// FieldError points at the request field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors is returned for request bodies the portal refuses.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	return "validation error"
}

type errorBody struct {
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorMapping struct {
	target error
	status int
	body   errorBody
}

var errorMappings = []errorMapping{
	{ErrInvalidRequest, http.StatusBadRequest, errorBody{Type: "validation_error", Message: "invalid request"}},
	{ErrUnauthorized, http.StatusUnauthorized, errorBody{Type: "unauthorized", Message: "unauthorized"}},
	{ErrRateLimited, http.StatusTooManyRequests, errorBody{Type: "rate_limited", Message: "too many requests"}},
	{ErrServiceUnavailable, http.StatusServiceUnavailable, errorBody{Type: "service_unavailable", Message: "service unavailable"}},
}

// ErrorHandlingMiddleware renders the last error attached with AbortWithError
// when the handler has not written a response itself.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		status, body := mapError(last.Err)
		c.AbortWithStatusJSON(status, errorEnvelope{Error: body})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func fieldError(field, code, message string) error {
	return &ValidationErrors{Errors: []FieldError{{Field: field, Code: code, Message: message}}}
}

func invalidRequestError() error {
	return fieldError("request", "invalid_request", "invalid request")
}

// credentialsValidationError maps credential input errors onto the field they
// concern.
func credentialsValidationError(err error) error {
	switch {
	case errors.Is(err, credentials.ErrInvalidToken):
		return fieldError("token", "invalid_token", err.Error())
	case errors.Is(err, credentials.ErrInvalidAccountID):
		return fieldError("account_id", "invalid_account_id", err.Error())
	case errors.Is(err, credentials.ErrEmptyPatch):
		return fieldError("request", "empty_update", err.Error())
	default:
		return err
	}
}

func mapError(err error) (int, errorBody) {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorBody{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.body
		}
	}
	return http.StatusInternalServerError, errorBody{Type: "internal_error", Message: "internal server error"}
}

// classifyErrorForLog returns the error type and the most specific code.
func classifyErrorForLog(err error) (string, string) {
	_, body := mapError(err)
	if len(body.Errors) > 0 {
		return body.Type, body.Errors[0].Code
	}
	return body.Type, body.Type
}
