// Package apierror renders the API's error envelope: {"errors":[{"msg","param"}]}.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Item is a single entry of the error envelope.
type Item struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

// Body is the JSON error envelope returned by every failing endpoint.
type Body struct {
	Errors []Item `json:"errors"`
}

// New builds an envelope holding one message.
func New(msg string) Body {
	return Body{Errors: []Item{{Msg: msg}}}
}

// Respond writes an envelope with a single message.
func Respond(c *gin.Context, status int, msg string) {
	c.JSON(status, New(msg))
}

// Abort writes an envelope and stops the handler chain.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, New(msg))
}

// Internal records err on the context for the request logger and writes a
// generic 500 envelope.
func Internal(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, New("internal server error"))
}

// BindError converts a binding failure into a 400 envelope, one item per
// failing field when the validator produced them.
func BindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, FromBindError(err))
}

// FromBindError maps gin binding errors to the envelope.
func FromBindError(err error) Body {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		items := make([]Item, 0, len(verrs))
		for _, fe := range verrs {
			items = append(items, Item{Msg: fieldMessage(fe), Param: jsonName(fe)})
		}
		return Body{Errors: items}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return Body{Errors: []Item{{Msg: "invalid value", Param: typeErr.Field}}}
	case errors.As(err, &syntaxErr):
		return New("malformed JSON body")
	}
	return New("invalid request body")
}

func jsonName(fe validator.FieldError) string {
	field := fe.Field()
	if field == "" {
		return ""
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if isNumeric(fe) {
			return fmt.Sprintf("must be at least %s", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if isNumeric(fe) {
			return fmt.Sprintf("must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}

func isNumeric(fe validator.FieldError) bool {
	kind := fe.Kind()
	if kind == reflect.Ptr && fe.Type() != nil {
		kind = fe.Type().Elem().Kind()
	}
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
