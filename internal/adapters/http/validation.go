package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/PabloGalante/liora-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// validateRequest checks struct tags and converts the first failure into a
// domain.ValidationError.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "notblank", "min":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("%s required", fe.Field()))
	case "oneof":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
	default:
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// decodeJSON reads the body into dst. An empty body decodes to the zero value.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("body", "invalid JSON body")
	}
	return nil
}

// answerValue accepts a JSON number or a numeric string, mirroring how
// clients send questionnaire answers. Fractions are truncated toward zero.
type answerValue int

func (a *answerValue) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))

	switch {
	case raw == "true":
		*a = 1
		return nil
	case raw == "false":
		*a = 0
		return nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return fmt.Errorf("answer %q is not an integer", s)
		}
		*a = answerValue(n)
		return nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("answer %s is not a number", raw)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return fmt.Errorf("answer %s is not an integer in range", raw)
	}
	*a = answerValue(math.Trunc(f))
	return nil
}

func answersToInts(in []answerValue) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
