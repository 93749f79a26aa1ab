package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker is the plottable view of a record that has coordinates. The browser
// renders it as a circle marker with a popup; PopupKey identifies the popup's
// weather placeholder.
type Marker struct {
	Location   string   `json:"location"`
	Year       int      `json:"year"`
	Type       string   `json:"type"`
	Fatalities int      `json:"fatalities"`
	Country    string   `json:"country"`
	Point      GeoPoint `json:"point"`
	Color      string   `json:"color"`
	Size       float64  `json:"size"`
	PopupKey   string   `json:"popup_key"`
}

// MarkerColor maps a fatality count to a severity color. Tiers are evaluated
// in descending order, first match wins.
func MarkerColor(fatalities int) string {
	switch {
	case fatalities > 50:
		return "red"
	case fatalities > 10:
		return "orange"
	case fatalities > 0:
		return "yellow"
	default:
		return "green"
	}
}

// MarkerSize scales the marker radius with fatalities, clamped to [5, 15].
func MarkerSize(fatalities int) float64 {
	size := float64(fatalities) / 10
	if size < 5 {
		size = 5
	}
	if size > 15 {
		size = 15
	}
	return size
}

// MarkerKey identifies a marker's weather popup placeholder by year and
// slugged location. Both the placeholder element and the weather-fetch
// trigger derive their id from the same key, so the two always agree.
type MarkerKey struct {
	Year     int
	Location string
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NewMarkerKey builds a key from a record's year and raw location string.
func NewMarkerKey(year int, location string) MarkerKey {
	return MarkerKey{Year: year, Location: slugLocation(location)}
}

func (k MarkerKey) String() string {
	return fmt.Sprintf("%d-%s", k.Year, k.Location)
}

// slugLocation collapses whitespace runs to a single separator so the key is
// safe to use as a DOM id.
func slugLocation(location string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(location), "-")
}

// BuildMarkers maps plottable records to markers. Records without
// coordinates are skipped; that is expected data quality, not an error.
func BuildMarkers(records []CrashRecord) []Marker {
	markers := make([]Marker, 0, len(records))
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}
		markers = append(markers, Marker{
			Location:   r.Location,
			Year:       r.Year,
			Type:       r.Type,
			Fatalities: r.Fatalities,
			Country:    r.Country,
			Point:      GeoPoint{Lat: r.Latitude, Lon: r.Longitude},
			Color:      MarkerColor(r.Fatalities),
			Size:       MarkerSize(r.Fatalities),
			PopupKey:   NewMarkerKey(r.Year, r.Location).String(),
		})
	}
	return markers
}
