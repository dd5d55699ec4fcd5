package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the global validator instance
var Validate *validator.Validate

func init() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("latitude", validateLatitude)
	_ = Validate.RegisterValidation("longitude", validateLongitude)
	_ = Validate.RegisterValidation("density_level", validateDensityLevel)
	_ = Validate.RegisterValidation("emergency_type", validateEmergencyType)
	_ = Validate.RegisterValidation("emergency_severity", validateEmergencySeverity)
	_ = Validate.RegisterValidation("travel_mode", validateTravelMode)
}

// ValidationError aggregates field-level validation failures.
type ValidationError struct {
	Errors map[string]string
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for field, msg := range v.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AddError records a failure for a field
func (v *ValidationError) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	v.Errors[field] = message
}

// HasErrors reports whether any failures were recorded
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// NewValidationError converts validator errors into a ValidationError
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Errors: make(map[string]string)}
	for _, fieldErr := range errs {
		ve.Errors[strings.ToLower(fieldErr.Field())] = fmt.Sprintf(
			"failed on the '%s' rule", fieldErr.Tag(),
		)
	}
	return ve
}

// ValidateStruct validates a struct and returns a ValidationError if validation fails
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// validateLatitude checks if latitude is within valid range (-90 to 90)
func validateLatitude(fl validator.FieldLevel) bool {
	latitude := fl.Field().Float()
	return latitude >= -90.0 && latitude <= 90.0
}

// validateLongitude checks if longitude is within valid range (-180 to 180)
func validateLongitude(fl validator.FieldLevel) bool {
	longitude := fl.Field().Float()
	return longitude >= -180.0 && longitude <= 180.0
}

func validateDensityLevel(fl validator.FieldLevel) bool {
	return contains([]string{"low", "medium", "high", "critical"}, fl.Field().String())
}

func validateEmergencyType(fl validator.FieldLevel) bool {
	return contains([]string{
		"stampede_risk", "overcrowding", "blocked_exit", "panic_situation",
		"medical_emergency", "fire_hazard", "structural_issue",
	}, fl.Field().String())
}

func validateEmergencySeverity(fl validator.FieldLevel) bool {
	return contains([]string{"low", "medium", "high", "critical"}, fl.Field().String())
}

func validateTravelMode(fl validator.FieldLevel) bool {
	return contains([]string{"walking", "driving", "transit"}, fl.Field().String())
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	item = strings.ToLower(strings.TrimSpace(item))
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// ValidateCoordinates validates latitude and longitude
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90.0 || latitude > 90.0 {
		return fmt.Errorf("latitude must be between -90 and 90, got: %f", latitude)
	}
	if longitude < -180.0 || longitude > 180.0 {
		return fmt.Errorf("longitude must be between -180 and 180, got: %f", longitude)
	}
	return nil
}

// ValidateRadius validates a search radius in kilometers
func ValidateRadius(radiusKm float64) error {
	if radiusKm <= 0 {
		return fmt.Errorf("radius must be positive, got: %f", radiusKm)
	}
	if radiusKm > 100 {
		return fmt.Errorf("radius exceeds maximum of 100 km: %f", radiusKm)
	}
	return nil
}
