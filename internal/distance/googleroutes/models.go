package googleroutes

// computeRoutesRequest is the Routes API request body.
type computeRoutesRequest struct {
	Origin            waypoint `json:"origin"`
	Destination       waypoint `json:"destination"`
	TravelMode        string   `json:"travelMode"`
	RoutingPreference string   `json:"routingPreference"`
	Units             string   `json:"units"`
}

// waypoint addresses a route endpoint by free-text address.
type waypoint struct {
	Address string `json:"address"`
}

// computeRoutesResponse is the subset of the Routes API response we consume.
type computeRoutesResponse struct {
	Routes []route `json:"routes"`
}

type route struct {
	DistanceMeters int `json:"distanceMeters"`
	// Duration is encoded as "<seconds>s".
	Duration string `json:"duration"`
}
