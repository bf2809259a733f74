// Package input loads the parameters of a batch run.
package input

import (
	"emailcount/pkg/serrors"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultMaxResults caps the number of records of a run when neither the input
// nor the caller sets a positive limit.
const DefaultMaxResults = 50

// Input holds the parameters of one batch run.
type Input struct {
	// TombaAPIKey is sent as X-Tomba-Key
	TombaAPIKey string `env:"TOMBA_API_KEY" json:"tombaApiKey" yaml:"tombaApiKey"`
	// TombaAPISecret is sent as X-Tomba-Secret
	TombaAPISecret string `env:"TOMBA_API_SECRET" json:"tombaApiSecret" yaml:"tombaApiSecret"`
	// Domains are processed in order
	Domains []string `env:"DOMAINS" env-separator:"," json:"domains" yaml:"domains"`
	// MaxResults caps the number of records; non-positive means the default
	MaxResults int `env:"MAX_RESULTS" json:"maxResults" yaml:"maxResults"`
}

// Load reads the input file at path (JSON or YAML, chosen by extension) and
// applies environment overrides. An empty path reads the environment only.
// A non-positive maxResults is replaced by defaultMaxResults, or by
// DefaultMaxResults when that is not positive either.
func Load(path string, defaultMaxResults int) (*Input, error) {
	var in Input
	if path == "" {
		if err := cleanenv.ReadEnv(&in); err != nil {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not read input from env")
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, serrors.With(serrors.ErrBadRequest, "no input provided")
			}

			return nil, fmt.Errorf("could not stat input file: %w", err)
		}

		if err := cleanenv.ReadConfig(path, &in); err != nil {
			return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not read input")
		}
	}

	in.normalize(defaultMaxResults)

	return &in, nil
}

// SetDomains replaces the input domains, normalizing them like Load does.
func (in *Input) SetDomains(domains []string) {
	in.Domains = trimDomains(domains)
}

func (in *Input) normalize(defaultMaxResults int) {
	in.TombaAPIKey = strings.TrimSpace(in.TombaAPIKey)
	in.TombaAPISecret = strings.TrimSpace(in.TombaAPISecret)
	in.Domains = trimDomains(in.Domains)

	if defaultMaxResults <= 0 {
		defaultMaxResults = DefaultMaxResults
	}
	if in.MaxResults <= 0 {
		in.MaxResults = defaultMaxResults
	}
}

// Validate reports missing credentials.
func (in *Input) Validate() error {
	if in.TombaAPIKey == "" || in.TombaAPISecret == "" {
		return serrors.With(serrors.ErrUnauthorized, "Tomba API key and secret are required")
	}

	return nil
}

// trimDomains trims every entry. Blank entries are kept so the run still
// counts them as submitted domains.
func trimDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		out = append(out, strings.TrimSpace(d))
	}

	return out
}
