package routing

// LatLng is a coordinate pair in the provider's wire format.
type LatLng struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Bounds is the bounding box of a route.
type Bounds struct {
	NorthEast LatLng `json:"northeast"`
	SouthWest LatLng `json:"southwest"`
}

// Route is one candidate route from the provider.
type Route struct {
	Summary         string  `json:"summary"`
	DurationSeconds int     `json:"duration"`
	DistanceMeters  int     `json:"distance"`
	Polyline        string  `json:"polyline,omitempty"`
	Bounds          *Bounds `json:"bounds,omitempty"`
}

// CrowdedArea is a dense location found along a route.
type CrowdedArea struct {
	Name       string  `json:"name"`
	Density    string  `json:"density"`
	Percentage float64 `json:"percentage"`
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lng"`
}

// EmergencyArea is an active alert found along a route.
type EmergencyArea struct {
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// ScoredRoute is a route annotated with its safety analysis.
type ScoredRoute struct {
	Route
	SafetyScore    int             `json:"safety_score"`
	Warnings       []string        `json:"warnings"`
	CrowdedAreas   []CrowdedArea   `json:"crowded_areas"`
	EmergencyAreas []EmergencyArea `json:"emergency_areas"`
	Recommendation string          `json:"recommendation"`
}

// SafetyAnalysis summarizes what the recommended route steers around.
type SafetyAnalysis struct {
	CrowdedAreasAvoided   int `json:"crowded_areas_avoided"`
	EmergencyAreasAvoided int `json:"emergency_areas_avoided"`
}

// SafeRoutesRequest is the payload for route safety scoring.
type SafeRoutesRequest struct {
	Origin           LatLng  `json:"origin" binding:"required"`
	Destination      LatLng  `json:"destination" binding:"required"`
	AvoidCrowds      *bool   `json:"avoid_crowds"`
	AvoidEmergencies *bool   `json:"avoid_emergencies"`
	TransportMode    string  `json:"transport_mode"`
	MaxDetourPercent float64 `json:"max_detour_percent"`
}

// SafeRoutesResult ranks the analyzed routes.
type SafeRoutesResult struct {
	Recommended    *ScoredRoute   `json:"recommended_route"`
	Alternatives   []*ScoredRoute `json:"alternative_routes"`
	SafetyAnalysis SafetyAnalysis `json:"safety_analysis"`
}

// EvacuationRequest is the payload for evacuation planning.
type EvacuationRequest struct {
	CurrentLocation    LatLng  `json:"current_location" binding:"required"`
	EmergencyLocation  LatLng  `json:"emergency_location" binding:"required"`
	EvacuationRadiusKm float64 `json:"evacuation_radius"`
	MaxRoutes          int     `json:"max_routes"`
}

// EvacuationRoute is one scored route to a safe destination.
type EvacuationRoute struct {
	Destination     string       `json:"destination"`
	Route           *ScoredRoute `json:"route"`
	EstimatedSafety int          `json:"estimated_safety"`
}

// EvacuationPlan is the full evacuation response.
type EvacuationPlan struct {
	EvacuationRoutes   []EvacuationRoute `json:"evacuation_routes"`
	EmergencyLocation  LatLng            `json:"emergency_location"`
	EvacuationRadiusKm float64           `json:"evacuation_radius"`
	Instructions       []string          `json:"instructions"`
}

// SafeDestination is a catalog entry for evacuation planning.
type SafeDestination struct {
	Name                  string  `json:"name"`
	Latitude              float64 `json:"lat"`
	Longitude             float64 `json:"lng"`
	Category              string  `json:"type"`
	DistanceFromCurrentKm float64 `json:"distance_from_current"`
	SafetyLevel           int     `json:"safety_level"`
}
