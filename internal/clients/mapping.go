package clients

import "github.com/Victorissad/Mario-VIS/internal/domain"

// ToAPIPayload renames local film fields to the remote names and fills in the
// rental defaults. Absent optional fields are left out of the payload, except
// rentalDuration, rentalRate and replacementCost which are always present.
func ToAPIPayload(in domain.FilmInput) map[string]any {
	payload := make(map[string]any, 10)

	if in.LanguageID != nil {
		payload["originalLanguageId"] = *in.LanguageID
	}
	if in.Title != "" {
		payload["title"] = in.Title
	}
	if in.Description != nil {
		payload["description"] = *in.Description
	}
	if in.ReleaseYear != nil {
		payload["releaseYear"] = *in.ReleaseYear
	}
	if in.Length != nil {
		payload["length"] = *in.Length
	}
	if in.ReplacementCost != nil {
		payload["replacementCost"] = *in.ReplacementCost
	}
	if in.Rating != nil {
		payload["rating"] = *in.Rating
	}
	if in.SpecialFeatures != nil {
		payload["specialFeatures"] = *in.SpecialFeatures
	}

	if _, ok := payload["rentalDuration"]; !ok {
		payload["rentalDuration"] = domain.DefaultRentalDuration
	}
	if _, ok := payload["rentalRate"]; !ok {
		payload["rentalRate"] = domain.DefaultRentalRate
	}
	if _, ok := payload["replacementCost"]; !ok {
		payload["replacementCost"] = domain.DefaultReplacementCost
	}
	return payload
}
