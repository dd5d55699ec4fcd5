package validation

// Common validation rules shared by handlers

// PaginationRequest represents common pagination parameters
type PaginationRequest struct {
	Limit  int `form:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset int `form:"offset" validate:"omitempty,gte=0"`
}

// Normalize applies defaults and caps to pagination values.
func (p *PaginationRequest) Normalize() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// RouteEndpoints validates that a route has two distinct endpoints.
func RouteEndpoints(startLat, startLon, endLat, endLon float64) error {
	if err := ValidateCoordinates(startLat, startLon); err != nil {
		return err
	}
	if err := ValidateCoordinates(endLat, endLon); err != nil {
		return err
	}
	if startLat == endLat && startLon == endLon {
		return &ValidationError{
			Errors: map[string]string{
				"location": "start and end locations cannot be the same",
			},
		}
	}
	return nil
}
