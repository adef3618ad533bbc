// internal/api/forms.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/Victorissad/Mario-VIS/internal/domain"
)

// releaseYearHorizon is how many years ahead a release year may be announced.
const releaseYearHorizon = 5

// MaxReleaseYear is the latest release year accepted at now.
func MaxReleaseYear(now time.Time) int {
	return now.Year() + releaseYearHorizon
}

// NewValidator returns a validator that reports fields by their form name
// and knows the releaseyear rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("releaseyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(MaxReleaseYear(time.Now()))
	})
	return v
}

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true) // _token, _method
	return d
}

// fieldMessages are the human messages per "field.rule".
var fieldMessages = map[string]string{
	"title.required":          "The title is required.",
	"title.max":               "The title may not be longer than 255 characters.",
	"releaseYear.required":    "The release year is required.",
	"releaseYear.gte":         fmt.Sprintf("The release year cannot be earlier than %d.", domain.MinReleaseYear),
	"releaseYear.releaseyear": fmt.Sprintf("The release year cannot be more than %d years ahead.", releaseYearHorizon),
	"languageId.required":     "The language is required.",
	"languageId.gte":          "The language is required.",
	"length.gte":              "The length must be at least 1 minute.",
	"replacementCost.gte":     "The replacement cost cannot be negative.",
	"rating.oneof":            "The rating must be G, PG, PG-13, R or NC-17.",
	"email.required":          "The email address is required.",
	"email.email":             "The email address is not valid.",
	"password.required":       "The password is required.",
}

// decodeForm parses the request body into dst.
func decodeForm(r *http.Request, decoder *schema.Decoder, dst any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("failed to parse form: %w", err)
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("failed to decode form: %w", err)
	}
	return nil
}

// validateStruct runs the validator and returns one message per invalid field.
// A nil map means the struct is valid.
func validateStruct(ctx context.Context, v *validator.Validate, s any) (map[string]string, error) {
	err := v.StructCtx(ctx, s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("The %s field is invalid.", fe.Field())
		}
		out[fe.Field()] = msg
	}
	return out, nil
}

// validateFilm turns raw film form values into a FilmInput. It returns the
// field errors, conversion failures first.
func validateFilm(ctx context.Context, v *validator.Validate, form domain.FilmForm) (domain.FilmInput, map[string]string, error) {
	in, bad := form.Input()
	errs, err := validateStruct(ctx, v, in)
	if err != nil {
		return in, nil, err
	}
	for field, msg := range bad {
		if errs == nil {
			errs = make(map[string]string)
		}
		errs[field] = msg
	}
	return in, errs, nil
}
