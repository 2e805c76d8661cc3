package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type RouteStatus string

const (
	RouteStatusScheduled  RouteStatus = "Scheduled"
	RouteStatusInProgress RouteStatus = "InProgress"
	RouteStatusCompleted  RouteStatus = "Completed"
	RouteStatusCancelled  RouteStatus = "Cancelled"
)

// routeTransitions is the directed graph of allowed status changes.
// Completed and Cancelled are terminal.
var routeTransitions = map[RouteStatus][]RouteStatus{
	RouteStatusScheduled:  {RouteStatusInProgress, RouteStatusCancelled},
	RouteStatusInProgress: {RouteStatusCompleted, RouteStatusCancelled},
	RouteStatusCompleted:  {},
	RouteStatusCancelled:  {},
}

func (s RouteStatus) Terminal() bool {
	return s == RouteStatusCompleted || s == RouteStatusCancelled
}

func (s RouteStatus) CanTransitionTo(to RouteStatus) bool {
	for _, allowed := range routeTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Route struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name             string      `gorm:"type:varchar(100);not null" json:"name"`
	Origin           string      `gorm:"type:varchar(100);not null" json:"origin"`
	Destination      string      `gorm:"type:varchar(100);not null" json:"destination"`
	DistanceKm       float64     `gorm:"not null" json:"distance_km"`
	EstimatedMinutes int         `gorm:"not null" json:"estimated_minutes"`
	VehicleID        *uuid.UUID  `gorm:"type:uuid" json:"vehicle_id"`
	Status           RouteStatus `gorm:"type:route_status;not null;default:'Scheduled'" json:"status"`
	StartedAt        *time.Time  `json:"started_at,omitempty"`
	FinishedAt       *time.Time  `json:"finished_at,omitempty"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID" json:"-"`
}

func (Route) TableName() string {
	return "routes"
}

// ActualDurationMinutes is defined only once the route has both started
// and finished.
func (r Route) ActualDurationMinutes() *int {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return nil
	}
	minutes := int(r.FinishedAt.Sub(*r.StartedAt).Minutes())
	return &minutes
}

func (r Route) AverageSpeedKmh() *float64 {
	duration := r.ActualDurationMinutes()
	if duration == nil || *duration <= 0 {
		return nil
	}
	speed := math.Round(r.DistanceKm/(float64(*duration)/60)*100) / 100
	return &speed
}
