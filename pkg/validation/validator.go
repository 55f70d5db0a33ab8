package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init makes Gin's binding validator report JSON field names.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Rule is a validator tag applied to one value, with the message reported
// when it fails.
type Rule struct {
	Tag     string
	Message string
}

// Check pairs a value with its rule.
type Check struct {
	Value any
	Rule  Rule
}

// Checker runs checks in order and stops at the first failure.
type Checker struct {
	v *validator.Validate
}

func NewChecker() *Checker {
	return &Checker{v: validator.New()}
}

// First returns the message of the first failing check. String lengths
// are counted in characters.
func (c *Checker) First(checks ...Check) (string, bool) {
	for _, ch := range checks {
		if err := c.v.Var(ch.Value, ch.Rule.Tag); err != nil {
			return ch.Rule.Message, true
		}
	}
	return "", false
}

// ToDetails converts a binding error into a map[field]message for the
// error envelope.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			field = "payload"
		}
		return map[string]string{field: "must be a " + ute.Type.String()}
	}
	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = describe(fe)
		}
		return out
	}
	return map[string]string{"payload": err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	default:
		return "failed '" + fe.Tag() + "' validation"
	}
}
