package model

import (
	"testing"
	"time"
)

func TestRouteStatusTransitions(t *testing.T) {
	if !RouteStatusScheduled.CanTransitionTo(RouteStatusInProgress) {
		t.Fatal("expected scheduled -> in progress allowed")
	}
	if !RouteStatusScheduled.CanTransitionTo(RouteStatusCancelled) {
		t.Fatal("expected scheduled -> cancelled allowed")
	}
	if !RouteStatusInProgress.CanTransitionTo(RouteStatusCompleted) {
		t.Fatal("expected in progress -> completed allowed")
	}
	if RouteStatusScheduled.CanTransitionTo(RouteStatusCompleted) {
		t.Fatal("expected scheduled -> completed not allowed")
	}
	if RouteStatusCompleted.CanTransitionTo(RouteStatusCancelled) {
		t.Fatal("expected completed terminal")
	}
	if RouteStatusCancelled.CanTransitionTo(RouteStatusInProgress) {
		t.Fatal("expected cancelled terminal")
	}
}

func TestRouteStatusTerminal(t *testing.T) {
	for _, status := range []RouteStatus{RouteStatusCompleted, RouteStatusCancelled} {
		if !status.Terminal() {
			t.Errorf("expected %s terminal", status)
		}
	}
	for _, status := range []RouteStatus{RouteStatusScheduled, RouteStatusInProgress} {
		if status.Terminal() {
			t.Errorf("expected %s not terminal", status)
		}
	}
}

func TestRouteDerivedValues(t *testing.T) {
	route := Route{DistanceKm: 90}

	if route.ActualDurationMinutes() != nil {
		t.Fatal("expected no duration before start")
	}
	if route.AverageSpeedKmh() != nil {
		t.Fatal("expected no speed before start")
	}

	started := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Minute)
	route.StartedAt = &started
	route.FinishedAt = &finished

	duration := route.ActualDurationMinutes()
	if duration == nil || *duration != 90 {
		t.Fatalf("expected 90 minutes, got %v", duration)
	}

	speed := route.AverageSpeedKmh()
	if speed == nil || *speed != 60 {
		t.Fatalf("expected 60 km/h, got %v", speed)
	}
}

func TestVehicleDisplayName(t *testing.T) {
	vehicle := Vehicle{Plate: "ABC1234", Make: "Volvo", Model: "FH16", Year: 2020}
	if got := vehicle.DisplayName(); got != "Volvo FH16 (ABC1234)" {
		t.Fatalf("unexpected display name %q", got)
	}
	if got := vehicle.AgeYears(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); got != 6 {
		t.Fatalf("expected age 6, got %d", got)
	}
}
