package crowd

import "math/rand"

// crowdMultiplier returns the expected fraction of capacity for a location
// category at the given hour, split by weekday and weekend patterns. The
// table stands in for a real crowd-sensing feed.
func crowdMultiplier(category Category, hour int, weekend bool) float64 {
	switch category {
	case CategoryTransport:
		if weekend {
			if hour >= 10 && hour <= 18 {
				return 0.6
			}
			return 0.2
		}
		if (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19) {
			return 0.8
		}
		return 0.3
	case CategoryShopping:
		if weekend {
			if hour >= 11 && hour <= 20 {
				return 0.9
			}
			return 0.3
		}
		if hour >= 18 && hour <= 21 {
			return 0.7
		}
		return 0.4
	case CategoryReligious:
		if weekend {
			if hour >= 6 && hour <= 12 {
				return 0.8
			}
			return 0.3
		}
		if (hour >= 6 && hour <= 8) || (hour >= 18 && hour <= 20) {
			return 0.6
		}
		return 0.2
	case CategoryEvent:
		if weekend {
			if hour >= 15 && hour <= 22 {
				return 0.9
			}
			return 0.4
		}
		return 0.3
	case CategoryStadium:
		if weekend {
			if hour >= 16 && hour <= 20 {
				return 0.95
			}
			return 0.1
		}
		return 0.1
	case CategoryFestival:
		if weekend {
			if hour >= 10 && hour <= 23 {
				return 0.9
			}
			return 0.4
		}
		if hour >= 18 && hour <= 23 {
			return 0.8
		}
		return 0.3
	default:
		if weekend {
			return 0.4
		}
		return 0.3
	}
}

// defaultJitter returns a multiplier scale in [0.8, 1.2).
func defaultJitter() float64 {
	return 0.8 + rand.Float64()*0.4
}

// sampleLocations are well-known Bengaluru gathering spots used to
// bootstrap an empty database for demos.
func sampleLocations() []*RegisterLocationRequest {
	return []*RegisterLocationRequest{
		{
			Name:         "Bengaluru City Railway Station",
			Category:     string(CategoryTransport),
			Latitude:     12.9762,
			Longitude:    77.6033,
			MaxCapacity:  5000,
			InitialCount: 1200,
		},
		{
			Name:         "Commercial Street",
			Category:     string(CategoryShopping),
			Latitude:     12.9716,
			Longitude:    77.6412,
			MaxCapacity:  3000,
			InitialCount: 800,
		},
		{
			Name:         "Chinnaswamy Stadium",
			Category:     string(CategoryStadium),
			Latitude:     12.9784,
			Longitude:    77.5996,
			MaxCapacity:  40000,
			InitialCount: 2000,
		},
		{
			Name:         "ISKCON Temple",
			Category:     string(CategoryReligious),
			Latitude:     12.9434,
			Longitude:    77.6009,
			MaxCapacity:  2000,
			InitialCount: 600,
		},
		{
			Name:         "Brigade Road",
			Category:     string(CategoryShopping),
			Latitude:     12.9698,
			Longitude:    77.6205,
			MaxCapacity:  4000,
			InitialCount: 1500,
		},
	}
}
