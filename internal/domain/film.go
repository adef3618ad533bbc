// internal/domain/film.go
package domain

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Defaults injected into every outbound write payload.
const (
	DefaultRentalDuration  = 3
	DefaultRentalRate      = 4.99
	DefaultReplacementCost = 19.99
)

// MinReleaseYear is the year of the oldest surviving film.
const MinReleaseYear = 1888

// Ratings lists the MPAA ratings accepted by the remote catalog.
var Ratings = []string{"G", "PG", "PG-13", "R", "NC-17"}

// Language is one entry of the language picker shown in film forms.
type Language struct {
	ID   int
	Name string
}

// Languages are the language choices offered by the forms.
var Languages = []Language{
	{ID: 1, Name: "English"},
	{ID: 2, Name: "French"},
	{ID: 3, Name: "Spanish"},
	{ID: 4, Name: "German"},
	{ID: 5, Name: "Italian"},
	{ID: 6, Name: "Japanese"},
}

// Film is a film as returned by the remote catalog API.
// The API identifies films by filmId; some deployments answer with id instead.
type Film struct {
	FilmID             int     `json:"filmId,omitempty"`
	ID                 int     `json:"id,omitempty"`
	Title              string  `json:"title"`
	Description        string  `json:"description,omitempty"`
	ReleaseYear        int     `json:"releaseYear,omitempty"`
	OriginalLanguageID int     `json:"originalLanguageId,omitempty"`
	LanguageID         int     `json:"languageId,omitempty"`
	Length             int     `json:"length,omitempty"`
	ReplacementCost    float64 `json:"replacementCost,omitempty"`
	RentalDuration     int     `json:"rentalDuration,omitempty"`
	RentalRate         float64 `json:"rentalRate,omitempty"`
	Rating             string  `json:"rating,omitempty"`
	SpecialFeatures    string  `json:"specialFeatures,omitempty"`
	LastUpdate         string  `json:"lastUpdate,omitempty"`
}

// Key returns the remote identifier of the film.
func (f Film) Key() int {
	if f.FilmID != 0 {
		return f.FilmID
	}
	return f.ID
}

// Language returns the language id, whichever key the API used for it.
func (f Film) Language() int {
	if f.OriginalLanguageID != 0 {
		return f.OriginalLanguageID
	}
	return f.LanguageID
}

// LanguageName resolves the language id against Languages.
func (f Film) LanguageName() string {
	id := f.Language()
	for _, l := range Languages {
		if l.ID == id {
			return l.Name
		}
	}
	if id == 0 {
		return ""
	}
	return "#" + strconv.Itoa(id)
}

// Form converts the film into form values, used to prefill the edit form.
func (f Film) Form() FilmForm {
	form := FilmForm{
		Title:           f.Title,
		Description:     f.Description,
		Rating:          f.Rating,
		SpecialFeatures: f.SpecialFeatures,
	}
	if f.ReleaseYear != 0 {
		form.ReleaseYear = strconv.Itoa(f.ReleaseYear)
	}
	if lang := f.Language(); lang != 0 {
		form.LanguageID = strconv.Itoa(lang)
	}
	if f.Length != 0 {
		form.Length = strconv.Itoa(f.Length)
	}
	if f.ReplacementCost != 0 {
		form.ReplacementCost = strconv.FormatFloat(f.ReplacementCost, 'f', 2, 64)
	}
	return form
}

// FilmForm holds the raw values posted by the create and edit forms.
type FilmForm struct {
	Title           string `schema:"title"`
	Description     string `schema:"description"`
	ReleaseYear     string `schema:"releaseYear"`
	LanguageID      string `schema:"languageId"`
	Length          string `schema:"length"`
	ReplacementCost string `schema:"replacementCost"`
	Rating          string `schema:"rating"`
	SpecialFeatures string `schema:"specialFeatures"`
}

// FilmInput is the validated local shape of a film write.
// Optional fields are pointers: nil means the user left the field empty.
type FilmInput struct {
	Title           string   `form:"title" validate:"required,max=255"`
	Description     *string  `form:"description"`
	ReleaseYear     *int     `form:"releaseYear" validate:"required,gte=1888,releaseyear"`
	LanguageID      *int     `form:"languageId" validate:"required,gte=1"`
	Length          *int     `form:"length" validate:"omitempty,gte=1"`
	ReplacementCost *float64 `form:"replacementCost" validate:"omitempty,gte=0"`
	Rating          *string  `form:"rating" validate:"omitempty,oneof=G PG PG-13 R NC-17"`
	SpecialFeatures *string  `form:"specialFeatures"`
}

// Input converts raw form values into a FilmInput. Empty values become nil.
// Values that cannot be parsed are reported per form field and left nil.
func (f FilmForm) Input() (FilmInput, map[string]string) {
	in := FilmInput{Title: strings.TrimSpace(f.Title)}
	bad := make(map[string]string)

	in.Description = optionalString(f.Description)
	in.Rating = optionalString(f.Rating)
	in.SpecialFeatures = optionalString(f.SpecialFeatures)

	var err error
	if in.ReleaseYear, err = optionalInt(f.ReleaseYear); err != nil {
		bad["releaseYear"] = "The release year must be a whole number."
	}
	if in.LanguageID, err = optionalInt(f.LanguageID); err != nil {
		bad["languageId"] = "The language must be a whole number."
	}
	if in.Length, err = optionalInt(f.Length); err != nil {
		bad["length"] = "The length must be a whole number of minutes."
	}
	if in.ReplacementCost, err = optionalFloat(f.ReplacementCost); err != nil {
		bad["replacementCost"] = "The replacement cost must be a number."
	}
	return in, bad
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// decimalNumber is a plain decimal: optional sign, digits, optional fraction.
// ParseFloat alone would also take "Inf", "NaN" and hex floats.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

var errNotDecimal = errors.New("not a decimal number")

func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !decimalNumber.MatchString(s) {
		return nil, errNotDecimal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, errNotDecimal
	}
	return &v, nil
}
