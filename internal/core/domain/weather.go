package domain

// WeatherReport is the current-conditions summary shown inside a marker
// popup. It is present-day weather at the crash site, not conditions at the
// time of the crash; the dashboard labels it accordingly.
type WeatherReport struct {
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	WindSpeedMS  float64 `json:"wind_speed_ms"`
	Description  string  `json:"description"`
}
