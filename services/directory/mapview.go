package directory

import (
	"strings"

	"casaora/config"

	"github.com/google/uuid"
)

// Map providers the front-end can render.
const (
	MapProviderGoogle = "google"
	MapProviderMapbox = "mapbox"
)

// MapMarker is one pin on the directory map.
type MapMarker struct {
	ID        uuid.UUID `json:"id"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Label     string    `json:"label"`
	RateLabel string    `json:"rateLabel"`
}

// MapConfig tells the browser which map SDK to load and with which public key.
type MapConfig struct {
	Provider  string `json:"provider"`
	PublicKey string `json:"publicKey"`
}

// MapMarkers returns pins for the professionals on page that have coordinates.
func MapMarkers(page *Page) []MapMarker {
	markers := []MapMarker{}
	if page == nil {
		return markers
	}
	for _, c := range page.Items {
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		markers = append(markers, MapMarker{
			ID:        c.ID,
			Latitude:  *c.Latitude,
			Longitude: *c.Longitude,
			Label:     c.DisplayName,
			RateLabel: c.RateLabel,
		})
	}
	return markers
}

// CurrentMapConfig reads the map provider from config. Mapbox is used only when
// selected and a token is present.
func CurrentMapConfig() MapConfig {
	cfg := config.AppConfig
	if strings.EqualFold(cfg.MapProvider, MapProviderMapbox) && cfg.MapboxToken != "" {
		return MapConfig{Provider: MapProviderMapbox, PublicKey: cfg.MapboxToken}
	}
	return MapConfig{Provider: MapProviderGoogle, PublicKey: cfg.GoogleMapsAPIKey}
}
