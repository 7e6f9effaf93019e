package geo

// knownCities is a small static table of well-known "City, ST" strings.
// Hits here skip the geocoding provider entirely. Keys are normalized
// (lowercase, trimmed). These fixed coordinates are intentionally not
// re-validated against the continental-US bounds.
var knownCities = map[string]Coordinate{
	"new york, ny":     {Lat: 40.7128, Lon: -74.0060},
	"los angeles, ca":  {Lat: 34.0522, Lon: -118.2437},
	"chicago, il":      {Lat: 41.8781, Lon: -87.6298},
	"houston, tx":      {Lat: 29.7604, Lon: -95.3698},
	"phoenix, az":      {Lat: 33.4484, Lon: -112.0740},
	"philadelphia, pa": {Lat: 39.9526, Lon: -75.1652},
	"san antonio, tx":  {Lat: 29.4241, Lon: -98.4936},
	"san diego, ca":    {Lat: 32.7157, Lon: -117.1611},
	"dallas, tx":       {Lat: 32.7767, Lon: -96.7970},
	"austin, tx":       {Lat: 30.2672, Lon: -97.7431},
	"miami, fl":        {Lat: 25.7617, Lon: -80.1918},
	"seattle, wa":      {Lat: 47.6062, Lon: -122.3321},
	"denver, co":       {Lat: 39.7392, Lon: -104.9903},
	"atlanta, ga":      {Lat: 33.7490, Lon: -84.3880},
	"boston, ma":       {Lat: 42.3601, Lon: -71.0589},
	"las vegas, nv":    {Lat: 36.1699, Lon: -115.1398},
}

// LookupCity returns the fixed coordinates for a well-known city string.
// The match is exact after normalization.
func LookupCity(address string) (Coordinate, bool) {
	c, ok := knownCities[NormalizeAddress(address)]
	return c, ok
}
