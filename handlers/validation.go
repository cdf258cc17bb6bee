package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationDetail is one entry of a 422 response body.
type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

// fieldName reports validation errors under the wire name of a field.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func respondValidation(c *gin.Context, details []ValidationDetail) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
}

// validationDetails translates a binding error into field-level details.
func validationDetails(err error) []ValidationDetail {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		numErr    *strconv.NumError
	)

	switch {
	case errors.As(err, &verrs):
		details := make([]ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, detailFor(fe))
		}
		return details
	case errors.As(err, &typeErr):
		return []ValidationDetail{{
			Loc:  []string{"body", typeErr.Field},
			Msg:  fmt.Sprintf("value is not a valid %s", typeErr.Type),
			Type: "type_error",
		}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return []ValidationDetail{{Loc: []string{"body"}, Msg: "invalid JSON", Type: "json_invalid"}}
	case errors.Is(err, io.EOF):
		return []ValidationDetail{{Loc: []string{"body"}, Msg: "field required", Type: "missing"}}
	case errors.As(err, &numErr):
		return []ValidationDetail{{
			Loc:  []string{"body"},
			Msg:  fmt.Sprintf("input %q is not a valid number", numErr.Num),
			Type: "float_parsing",
		}}
	default:
		return []ValidationDetail{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}
}

func detailFor(fe validator.FieldError) ValidationDetail {
	d := ValidationDetail{Loc: []string{"body", fe.Field()}}
	switch fe.Tag() {
	case "required":
		d.Msg, d.Type = "field required", "missing"
	case "max":
		d.Msg, d.Type = fmt.Sprintf("string should have at most %s characters", fe.Param()), "string_too_long"
	default:
		d.Msg, d.Type = fe.Error(), fe.Tag()
	}
	return d
}

// measurementDetails checks the raw form values of the numeric fields so
// blank and malformed inputs are reported per field.
func measurementDetails(form url.Values, fields []string) []ValidationDetail {
	var details []ValidationDetail
	for _, name := range fields {
		raw := form.Get(name)
		loc := []string{"body", name}
		if raw == "" {
			details = append(details, ValidationDetail{Loc: loc, Msg: "field required", Type: "missing"})
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			details = append(details, ValidationDetail{
				Loc:  loc,
				Msg:  "input should be a valid number, unable to parse string as a number",
				Type: "float_parsing",
			})
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			details = append(details, ValidationDetail{Loc: loc, Msg: "input should be a finite number", Type: "finite_number"})
		}
	}
	return details
}
