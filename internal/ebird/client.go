package ebird

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"birdfinder/internal/domain"
)

const (
	// DefaultBaseURL is the public eBird API v2 root.
	DefaultBaseURL    = "https://api.ebird.org/v2"
	defaultMaxResults = 20
	defaultTimeout    = 10 * time.Second
	apiTokenHeader    = "X-eBirdApiToken"
)

// Client looks up recent observations on eBird. Lookups never fail from the
// caller's point of view: upstream problems are logged and produce an empty
// result.
type Client interface {
	SearchSightings(ctx context.Context, region string) []domain.Sighting
	GetSpeciesDetail(ctx context.Context, region, speciesCode string) domain.SpeciesDetail
}

// Config customises the gateway.
type Config struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

type client struct {
	baseURL    string
	apiKey     string
	maxResults int
	http       *http.Client
	log        *logrus.Logger
}

// NewClient builds a gateway, filling unset fields with defaults.
func NewClient(cfg Config) Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
		http:       httpClient,
		log:        logger,
	}
}

func (c *client) SearchSightings(ctx context.Context, region string) []domain.Sighting {
	endpoint := fmt.Sprintf("%s/data/obs/%s/recent?maxResults=%s",
		c.baseURL, url.PathEscape(region), strconv.Itoa(c.maxResults))

	var sightings []domain.Sighting
	if err := c.getJSON(ctx, endpoint, &sightings); err != nil {
		c.log.WithError(err).WithField("region", region).Warn("failed to fetch bird sightings")
		return []domain.Sighting{}
	}
	if sightings == nil {
		sightings = []domain.Sighting{}
	}
	return sightings
}

func (c *client) GetSpeciesDetail(ctx context.Context, region, speciesCode string) domain.SpeciesDetail {
	endpoint := fmt.Sprintf("%s/data/obs/%s/recent/%s",
		c.baseURL, url.PathEscape(region), url.PathEscape(speciesCode))

	var observations []domain.Sighting
	if err := c.getJSON(ctx, endpoint, &observations); err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"region":       region,
			"species_code": speciesCode,
		}).Warn("failed to fetch bird details")
		return domain.SpeciesDetail{}
	}
	if len(observations) == 0 {
		return domain.SpeciesDetail{SpeciesCode: speciesCode}
	}

	first := observations[0]
	return domain.SpeciesDetail{
		SpeciesCode:    speciesCode,
		CommonName:     first.CommonName,
		ScientificName: first.ScientificName,
		Observations:   observations,
	}
}

func (c *client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(apiTokenHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request eBird: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("eBird responded with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode eBird response: %w", err)
	}
	return nil
}
