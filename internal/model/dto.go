package model

import (
	"github.com/google/uuid"
)

type VehicleBrief struct {
	ID    uuid.UUID `json:"id"`
	Plate string    `json:"plate"`
	Make  string    `json:"make"`
	Model string    `json:"model"`
}

type VehicleRecord struct {
	Vehicle
	DisplayName    string        `json:"display_name"`
	AgeYears       int           `json:"age_years"`
	HasActiveRoute bool          `json:"has_active_route"`
	Routes         []RouteRecord `json:"routes,omitempty"`
}

type RouteRecord struct {
	Route
	AssignedVehicle       *VehicleBrief `json:"vehicle,omitempty"`
	ActualDurationMinutes *int          `json:"actual_duration_minutes,omitempty"`
	AverageSpeedKmh       *float64      `json:"average_speed_kmh,omitempty"`
}

type FleetStats struct {
	TotalVehicles     int64 `json:"total_vehicles"`
	AvailableVehicles int64 `json:"available_vehicles"`
	TotalRoutes       int64 `json:"total_routes"`
	ActiveRoutes      int64 `json:"active_routes"`
}
