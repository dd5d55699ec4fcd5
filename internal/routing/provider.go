package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/suraksha/crowd-safety/pkg/cache"
	"github.com/suraksha/crowd-safety/pkg/geo"
	"github.com/suraksha/crowd-safety/pkg/httpclient"
	"github.com/suraksha/crowd-safety/pkg/logger"
	"github.com/suraksha/crowd-safety/pkg/resilience"
	"go.uber.org/zap"
)

const defaultDirectionsBaseURL = "https://maps.googleapis.com"

// GoogleProvider fetches routes from the Google Directions API behind a
// circuit breaker, with short-lived Redis caching. Any upstream failure
// degrades to a synthetic direct route so planning never hard-fails.
type GoogleProvider struct {
	client   *httpclient.Client
	apiKey   string
	breaker  *resilience.CircuitBreaker
	cache    *cache.Manager
	cacheTTL time.Duration
}

// GoogleProviderConfig groups the provider settings.
type GoogleProviderConfig struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	Cache    *cache.Manager
	CacheTTL time.Duration
	Breaker  *resilience.CircuitBreaker
}

// NewGoogleProvider creates a directions provider. Cache and breaker may
// be nil.
func NewGoogleProvider(cfg GoogleProviderConfig) *GoogleProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultDirectionsBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &GoogleProvider{
		client:   httpclient.NewClient(baseURL, timeout),
		apiKey:   cfg.APIKey,
		breaker:  cfg.Breaker,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
	}
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Summary string  `json:"summary"`
		Bounds  *Bounds `json:"bounds"`
		Legs    []struct {
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
		} `json:"legs"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// Routes returns candidate routes between origin and destination. Without
// an API key, or when the upstream call fails, it returns the direct
// route estimate.
func (p *GoogleProvider) Routes(ctx context.Context, origin, destination LatLng, mode string) ([]Route, error) {
	if p.apiKey == "" {
		return []Route{DirectRoute(origin, destination)}, nil
	}

	cacheKey := fmt.Sprintf("routes:%.4f,%.4f:%.4f,%.4f:%s",
		origin.Latitude, origin.Longitude, destination.Latitude, destination.Longitude, mode)
	if p.cache != nil {
		var cached []Route
		if err := p.cache.Get(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	routes, err := p.fetch(ctx, origin, destination, mode)
	if err != nil {
		logger.WithContext(ctx).Warn("directions provider failed, using direct route",
			zap.Error(err))
		return []Route{DirectRoute(origin, destination)}, nil
	}

	if p.cache != nil && p.cacheTTL > 0 {
		if err := p.cache.Set(ctx, cacheKey, routes, p.cacheTTL); err != nil {
			logger.Debug("route cache write failed", zap.Error(err))
		}
	}
	return routes, nil
}

func (p *GoogleProvider) fetch(ctx context.Context, origin, destination LatLng, mode string) ([]Route, error) {
	call := func(ctx context.Context) (interface{}, error) {
		query := url.Values{}
		query.Set("origin", fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude))
		query.Set("destination", fmt.Sprintf("%f,%f", destination.Latitude, destination.Longitude))
		query.Set("mode", mode)
		query.Set("alternatives", "true")
		query.Set("key", p.apiKey)

		body, err := p.client.Get(ctx, "/maps/api/directions/json?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var parsed directionsResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("decode directions response: %w", err)
		}
		if parsed.Status != "OK" {
			return nil, fmt.Errorf("directions API status: %s", parsed.Status)
		}

		routes := make([]Route, 0, len(parsed.Routes))
		for _, r := range parsed.Routes {
			if len(r.Legs) == 0 {
				continue
			}
			routes = append(routes, Route{
				Summary:         r.Summary,
				DurationSeconds: r.Legs[0].Duration.Value,
				DistanceMeters:  r.Legs[0].Distance.Value,
				Polyline:        r.OverviewPolyline.Points,
				Bounds:          r.Bounds,
			})
		}
		if len(routes) == 0 {
			return nil, fmt.Errorf("no routes returned")
		}
		return routes, nil
	}

	result, err := p.breaker.Execute(ctx, call)
	if err != nil {
		return nil, err
	}
	return result.([]Route), nil
}

// DirectRoute builds the synthetic straight-line route used when no
// provider data is available, assuming walking speed.
func DirectRoute(origin, destination LatLng) Route {
	distanceKm := geo.Haversine(origin.Latitude, origin.Longitude,
		destination.Latitude, destination.Longitude)
	return Route{
		Summary:         "Direct route",
		DurationSeconds: geo.EstimateWalkingSeconds(origin.Latitude, origin.Longitude, destination.Latitude, destination.Longitude),
		DistanceMeters:  int(distanceKm * 1000),
	}
}
