package subject

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/aaronzipp/officially-sus-arena/internal/models"
)

var debug bool

func init() {
	debug = os.Getenv("DEBUG") != ""
}

// DefaultLookupURL is TheSportsDB's public player search endpoint
const DefaultLookupURL = "https://www.thesportsdb.com/api/v1/json/3/searchplayers.php"

// Options configures a Provider
type Options struct {
	Catalog    []Entry
	LookupURL  string
	Timeout    time.Duration
	Enabled    bool
	HTTPClient *http.Client
}

// Provider resolves catalog entries into round subjects. It never fails:
// any lookup problem degrades to the bundled entry.
type Provider struct {
	catalog []Entry
	baseURL string
	timeout time.Duration
	enabled bool
	client  *http.Client
}

// NewProvider creates a provider over the given catalog
func NewProvider(opts Options) *Provider {
	if opts.LookupURL == "" {
		opts.LookupURL = DefaultLookupURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Provider{
		catalog: opts.Catalog,
		baseURL: opts.LookupURL,
		timeout: opts.Timeout,
		enabled: opts.Enabled,
		client:  opts.HTTPClient,
	}
}

// Catalog returns the entries the provider draws from
func (p *Provider) Catalog() []Entry {
	return p.catalog
}

// Resolve returns the subject for entry. The canonical catalog name is always
// kept; only the portrait may come from the remote lookup, and only when a
// result unambiguously names the entry.
func (p *Provider) Resolve(ctx context.Context, entry Entry) models.RoundSubject {
	fallback := models.RoundSubject{Name: entry.Name, ImageURL: entry.Image}
	if fallback.ImageURL == "" {
		fallback.ImageURL = PlaceholderImage
	}
	if !p.enabled {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results, err := p.searchPlayers(ctx, entry.Name)
	if err != nil {
		log.Printf("subject lookup failed, using catalog entry %q: %v", entry.Name, err)
		return fallback
	}

	image := ""
	for _, r := range results {
		if !entry.Matches(r.Name) {
			continue
		}
		candidate := r.Thumb
		if candidate == "" {
			candidate = r.Cutout
		}
		if candidate == "" {
			continue
		}
		if image != "" && image != candidate {
			if debug {
				log.Printf("subject lookup ambiguous for %q, using catalog entry", entry.Name)
			}
			return fallback
		}
		image = candidate
	}
	if image == "" {
		if debug {
			log.Printf("subject lookup found no confident match for %q", entry.Name)
		}
		return fallback
	}
	return models.RoundSubject{Name: entry.Name, ImageURL: image}
}

// NewDeck creates a per-session deck drawing from the provider's catalog
func (p *Provider) NewDeck(rng *rand.Rand) *Deck {
	return &Deck{
		provider: p,
		used:     make(map[string]bool),
		rng:      rng,
	}
}
