package subject

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// remotePlayer is the subset of a TheSportsDB player record we read
type remotePlayer struct {
	Name   string `json:"strPlayer"`
	Thumb  string `json:"strThumb"`
	Cutout string `json:"strCutout"`
}

type searchResponse struct {
	Player []remotePlayer `json:"player"`
}

// searchPlayers queries the lookup endpoint for players named name
func (p *Provider) searchPlayers(ctx context.Context, name string) ([]remotePlayer, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse lookup url: %w", err)
	}
	q := u.Query()
	q.Set("p", name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup %q: status %d", name, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode lookup %q: %w", name, err)
	}
	return body.Player, nil
}
