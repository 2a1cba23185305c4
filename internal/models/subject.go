package models

// RoundSubject is the secret shown to innocents during a round
type RoundSubject struct {
	Name     string `json:"name"`
	ImageURL string `json:"photo"`
}

// IsZero reports whether no subject has been assigned
func (s RoundSubject) IsZero() bool {
	return s.Name == ""
}
