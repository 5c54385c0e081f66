package models

// Genre is immutable reference data, seeded out-of-band.
type Genre struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
