// Package subject supplies the secret shown to innocents each round: a
// footballer's name and portrait, looked up remotely when possible and taken
// from a bundled catalog otherwise.
package subject

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// PlaceholderImage is served when neither the lookup nor the catalog has a portrait
const PlaceholderImage = "/static/img/placeholder-player.svg"

//go:embed catalog.json
var catalogJSON []byte

// Entry is one candidate subject
type Entry struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Image   string   `json:"photo,omitempty"`
}

// LoadCatalog parses the bundled catalog
func LoadCatalog() ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(catalogJSON, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog.json: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog.json is empty")
	}
	return entries, nil
}
