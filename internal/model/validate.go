package model

import (
	"fmt"
	"strings"
)

// FieldError reports a single field value that violates its constraint.
// Validators never touch anything beyond the one field they check.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

const (
	plateMinLen = 6
	plateMaxLen = 8
	yearMin     = 1990
	yearMax     = 2025
	capacityMax = 100
)

// NormalizePlate upper-cases and trims a plate before validation and
// storage, so uniqueness is case and whitespace insensitive.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

func ValidatePlate(plate string) *FieldError {
	if n := len(plate); n < plateMinLen || n > plateMaxLen {
		return fieldErr("plate", "must be between %d and %d characters", plateMinLen, plateMaxLen)
	}
	return nil
}

func ValidateMake(make string) *FieldError {
	return validateShortText("make", make, 50)
}

func ValidateModel(mdl string) *FieldError {
	return validateShortText("model", mdl, 50)
}

func ValidateYear(year int) *FieldError {
	if year < yearMin || year > yearMax {
		return fieldErr("year", "must be between %d and %d", yearMin, yearMax)
	}
	return nil
}

func ValidateCapacity(capacity int) *FieldError {
	if capacity <= 0 || capacity > capacityMax {
		return fieldErr("capacity", "must be between 1 and %d", capacityMax)
	}
	return nil
}

func ParseVehicleStatus(raw string) (VehicleStatus, *FieldError) {
	switch VehicleStatus(raw) {
	case VehicleStatusAvailable, VehicleStatusOnRoute, VehicleStatusMaintenance:
		return VehicleStatus(raw), nil
	}
	return "", fieldErr("status", "must be one of: %s, %s, %s",
		VehicleStatusAvailable, VehicleStatusOnRoute, VehicleStatusMaintenance)
}

func ValidateRouteName(name string) *FieldError {
	return validateShortText("name", name, 100)
}

func ValidateOrigin(origin string) *FieldError {
	return validateShortText("origin", origin, 100)
}

func ValidateDestination(destination string) *FieldError {
	return validateShortText("destination", destination, 100)
}

func ValidateDistanceKm(distance float64) *FieldError {
	if distance <= 0 {
		return fieldErr("distance_km", "must be greater than 0")
	}
	return nil
}

func ValidateEstimatedMinutes(minutes int) *FieldError {
	if minutes <= 0 {
		return fieldErr("estimated_minutes", "must be greater than 0")
	}
	return nil
}

func ParseRouteStatus(raw string) (RouteStatus, *FieldError) {
	switch RouteStatus(raw) {
	case RouteStatusScheduled, RouteStatusInProgress, RouteStatusCompleted, RouteStatusCancelled:
		return RouteStatus(raw), nil
	}
	return "", fieldErr("status", "must be one of: %s, %s, %s, %s",
		RouteStatusScheduled, RouteStatusInProgress, RouteStatusCompleted, RouteStatusCancelled)
}

func validateShortText(field, value string, maxLen int) *FieldError {
	if value == "" {
		return fieldErr(field, "is required")
	}
	if len(value) > maxLen {
		return fieldErr(field, "must be at most %d characters", maxLen)
	}
	return nil
}
