package httpapi

// LatLng is a lat/lng pair as exchanged over the wire.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start   LatLng `json:"start"`
	End     LatLng `json:"end"`
	Profile string `json:"profile"`
}

// RouteResponse wraps a GeoJSON route as total cost plus the route geometry.
type RouteResponse struct {
	TotalCost float64     `json:"total_cost"`
	Route     interface{} `json:"route"` // *geojson.FeatureCollection
}

// ErrorResponse is the JSON response for a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes int `json:"num_nodes"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
