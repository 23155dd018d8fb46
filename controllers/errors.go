package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/services"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, access.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrSelfSubscription), errors.Is(err, services.ErrBadCredentials):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error. Unexpected errors are logged and
// their details kept out of the response.
func respondError(c *gin.Context, err error, message string) {
	status := statusOf(err)
	body := gin.H{"error": err.Error()}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body["error"] = "Invalid input"
		body["fields"] = verr.Fields
	}
	if status == http.StatusInternalServerError {
		body["error"] = message
		initializers.LOGGER.Error(message, "error", err, "sub", utils.GetSubInfo(c), "path", c.Request.URL.Path)
	}
	c.JSON(status, body)
}

// bindError turns a gin binding failure into a ValidationError.
func bindError(err error) error {
	verr := &services.ValidationError{}

	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			field := jsonName(fe)
			switch fe.Tag() {
			case "required":
				verr.Add(field, "This field is required.")
			default:
				verr.Add(field, "Invalid value.")
			}
		}
	case errors.As(err, &typeErr):
		verr.Add(typeErr.Field, "Invalid type, expected "+typeErr.Type.String()+".")
	default:
		verr.Add("non_field_errors", "Malformed request body.")
	}
	return verr
}

// jsonName returns the snake_case name of a field, as gin reports struct
// field names.
func jsonName(fe validator.FieldError) string {
	var b strings.Builder
	for i, r := range fe.Field() {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
