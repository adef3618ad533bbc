package api

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victorissad/Mario-VIS/internal/domain"
)

func TestValidateFilm(t *testing.T) {
	v := NewValidator()
	maxYear := strconv.Itoa(MaxReleaseYear(time.Now()))
	tooLate := strconv.Itoa(MaxReleaseYear(time.Now()) + 1)

	base := func() domain.FilmForm {
		return domain.FilmForm{Title: "Matrix", ReleaseYear: "1999", LanguageID: "1"}
	}

	tests := []struct {
		name    string
		mutate  func(*domain.FilmForm)
		invalid []string
	}{
		{"minimal film", func(f *domain.FilmForm) {}, nil},
		{"all optional fields", func(f *domain.FilmForm) {
			f.Description, f.Length, f.ReplacementCost, f.Rating, f.SpecialFeatures = "d", "120", "0", "PG-13", "Trailers"
		}, nil},
		{"oldest film", func(f *domain.FilmForm) { f.ReleaseYear = "1888" }, nil},
		{"latest allowed year", func(f *domain.FilmForm) { f.ReleaseYear = maxYear }, nil},
		{"missing title", func(f *domain.FilmForm) { f.Title = "   " }, []string{"title"}},
		{"title too long", func(f *domain.FilmForm) { f.Title = strings.Repeat("a", 256) }, []string{"title"}},
		{"title at limit", func(f *domain.FilmForm) { f.Title = strings.Repeat("é", 255) }, nil},
		{"year too old", func(f *domain.FilmForm) { f.ReleaseYear = "1887" }, []string{"releaseYear"}},
		{"year too far ahead", func(f *domain.FilmForm) { f.ReleaseYear = tooLate }, []string{"releaseYear"}},
		{"year missing", func(f *domain.FilmForm) { f.ReleaseYear = "" }, []string{"releaseYear"}},
		{"language zero", func(f *domain.FilmForm) { f.LanguageID = "0" }, []string{"languageId"}},
		{"length zero", func(f *domain.FilmForm) { f.Length = "0" }, []string{"length"}},
		{"negative cost", func(f *domain.FilmForm) { f.ReplacementCost = "-0.01" }, []string{"replacementCost"}},
		{"unknown rating", func(f *domain.FilmForm) { f.Rating = "PG13" }, []string{"rating"}},
		{"non numeric cost", func(f *domain.FilmForm) { f.ReplacementCost = "cheap" }, []string{"replacementCost"}},
		{"infinite cost", func(f *domain.FilmForm) { f.ReplacementCost = "Inf" }, []string{"replacementCost"}},
		{"spelled out infinity", func(f *domain.FilmForm) { f.ReplacementCost = "+Infinity" }, []string{"replacementCost"}},
		{"hex float cost", func(f *domain.FilmForm) { f.ReplacementCost = "0x1p4" }, []string{"replacementCost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := base()
			tt.mutate(&form)

			_, errs, err := validateFilm(context.Background(), v, form)
			require.NoError(t, err)
			if tt.invalid == nil {
				assert.Nil(t, errs)
				return
			}
			require.Len(t, errs, len(tt.invalid))
			for _, field := range tt.invalid {
				assert.NotEmpty(t, errs[field], field)
			}
		})
	}
}

func TestValidateFilm_ReleaseYearMessages(t *testing.T) {
	v := NewValidator()
	_, errs, err := validateFilm(context.Background(), v, domain.FilmForm{Title: "x", LanguageID: "1", ReleaseYear: "3000"})
	require.NoError(t, err)
	assert.Equal(t, "The release year cannot be more than 5 years ahead.", errs["releaseYear"])

	_, errs, err = validateFilm(context.Background(), v, domain.FilmForm{Title: "x", LanguageID: "1", ReleaseYear: "MCMXCIX"})
	require.NoError(t, err)
	assert.Equal(t, "The release year must be a whole number.", errs["releaseYear"])
}

func TestValidateLogin(t *testing.T) {
	v := NewValidator()

	errs, err := validateStruct(context.Background(), v, domain.LoginRequest{Email: "mario@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Nil(t, errs)

	errs, err = validateStruct(context.Background(), v, domain.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, "The email address is required.", errs["email"])
	assert.Equal(t, "The password is required.", errs["password"])
}
