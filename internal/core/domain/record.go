package domain

// CrashRecord is a single aviation accident report as published by the
// upstream dataset. Field tags match the upstream JSON; Fatalities is absent
// in some rows and the zero value is the documented fallback.
type CrashRecord struct {
	Location   string  `json:"Location"`
	Year       int     `json:"Year"`
	Type       string  `json:"Type"`
	Fatalities int     `json:"Fatalities"`
	Country    string  `json:"Country"`
	Latitude   float64 `json:"Latitude,omitempty"`
	Longitude  float64 `json:"Longitude,omitempty"`
}

// HasCoordinates reports whether the record can be plotted. Zero doubles as
// the upstream sentinel for a missing coordinate, so a pair containing 0 is
// treated as absent.
func (r CrashRecord) HasCoordinates() bool {
	return r.Latitude != 0 && r.Longitude != 0
}

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether the point lies inside the box.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
