package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

// MemStore is an in-memory Store used by unit tests in place of a real
// database. InTransaction snapshots both tables and restores them when fn
// fails, mirroring the rollback guarantee of the SQL implementation. The
// error fields, when set, make the corresponding write fail so rollback
// paths can be exercised.
type MemStore struct {
	Vehicles map[uuid.UUID]*model.Vehicle
	Routes   map[uuid.UUID]*model.Route

	SaveVehicleErr error
	SaveRouteErr   error
}

func NewMemStore() *MemStore {
	return &MemStore{
		Vehicles: make(map[uuid.UUID]*model.Vehicle),
		Routes:   make(map[uuid.UUID]*model.Route),
	}
}

func (m *MemStore) FindVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, ok := m.Vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MemStore) FindVehicleByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	for _, vehicle := range m.Vehicles {
		if vehicle.Plate == plate {
			copy := *vehicle
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MemStore) ListVehicles(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	for _, vehicle := range m.Vehicles {
		if filter.Status != nil && vehicle.Status != *filter.Status {
			continue
		}
		if filter.Search != "" && !matchesAny(filter.Search, vehicle.Plate, vehicle.Make, vehicle.Model) {
			continue
		}
		vehicles = append(vehicles, *vehicle)
	}
	sort.Slice(vehicles, func(i, j int) bool {
		return vehicles[i].CreatedAt.After(vehicles[j].CreatedAt)
	})
	return window(vehicles, filter.Offset, filter.Limit), nil
}

func (m *MemStore) CountVehicles(ctx context.Context, status *model.VehicleStatus) (int64, error) {
	var count int64
	for _, vehicle := range m.Vehicles {
		if status == nil || vehicle.Status == *status {
			count++
		}
	}
	return count, nil
}

func (m *MemStore) SaveVehicle(ctx context.Context, vehicle *model.Vehicle) error {
	if m.SaveVehicleErr != nil {
		return m.SaveVehicleErr
	}
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	copy := *vehicle
	m.Vehicles[vehicle.ID] = &copy
	return nil
}

func (m *MemStore) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	delete(m.Vehicles, id)
	// ON DELETE CASCADE on routes.vehicle_id.
	for routeID, route := range m.Routes {
		if route.VehicleID != nil && *route.VehicleID == id {
			delete(m.Routes, routeID)
		}
	}
	return nil
}

func (m *MemStore) FindRoute(ctx context.Context, id uuid.UUID) (*model.Route, error) {
	route, ok := m.Routes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *route
	if copy.VehicleID != nil {
		if vehicle, ok := m.Vehicles[*copy.VehicleID]; ok {
			vcopy := *vehicle
			copy.Vehicle = &vcopy
		}
	}
	return &copy, nil
}

func (m *MemStore) ListRoutes(ctx context.Context, filter RouteFilter) ([]model.Route, error) {
	var routes []model.Route
	for _, route := range m.Routes {
		if filter.Status != nil && route.Status != *filter.Status {
			continue
		}
		if filter.VehicleID != nil && (route.VehicleID == nil || *route.VehicleID != *filter.VehicleID) {
			continue
		}
		if filter.Search != "" && !matchesAny(filter.Search, route.Name, route.Origin, route.Destination) {
			continue
		}
		copy := *route
		if copy.VehicleID != nil {
			if vehicle, ok := m.Vehicles[*copy.VehicleID]; ok {
				vcopy := *vehicle
				copy.Vehicle = &vcopy
			}
		}
		routes = append(routes, copy)
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].CreatedAt.After(routes[j].CreatedAt)
	})
	return window(routes, filter.Offset, filter.Limit), nil
}

func (m *MemStore) ListRoutesForVehicle(ctx context.Context, vehicleID uuid.UUID, statuses ...model.RouteStatus) ([]model.Route, error) {
	var routes []model.Route
	for _, route := range m.Routes {
		if route.VehicleID == nil || *route.VehicleID != vehicleID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, route.Status) {
			continue
		}
		routes = append(routes, *route)
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].CreatedAt.After(routes[j].CreatedAt)
	})
	return routes, nil
}

func (m *MemStore) CountRoutesForVehicle(ctx context.Context, vehicleID uuid.UUID, statuses ...model.RouteStatus) (int64, error) {
	routes, err := m.ListRoutesForVehicle(ctx, vehicleID, statuses...)
	if err != nil {
		return 0, err
	}
	return int64(len(routes)), nil
}

func (m *MemStore) CountRoutes(ctx context.Context, status *model.RouteStatus) (int64, error) {
	var count int64
	for _, route := range m.Routes {
		if status == nil || route.Status == *status {
			count++
		}
	}
	return count, nil
}

func (m *MemStore) SaveRoute(ctx context.Context, route *model.Route) error {
	if m.SaveRouteErr != nil {
		return m.SaveRouteErr
	}
	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	copy := *route
	copy.Vehicle = nil
	m.Routes[route.ID] = &copy
	return nil
}

func (m *MemStore) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	delete(m.Routes, id)
	return nil
}

func (m *MemStore) InTransaction(ctx context.Context, fn func(tx Store) error) error {
	vehicles := make(map[uuid.UUID]*model.Vehicle, len(m.Vehicles))
	for id, vehicle := range m.Vehicles {
		copy := *vehicle
		vehicles[id] = &copy
	}
	routes := make(map[uuid.UUID]*model.Route, len(m.Routes))
	for id, route := range m.Routes {
		copy := *route
		routes[id] = &copy
	}

	if err := fn(m); err != nil {
		m.Vehicles = vehicles
		m.Routes = routes
		return err
	}
	return nil
}

func matchesAny(search string, values ...string) bool {
	search = strings.ToLower(search)
	for _, value := range values {
		if strings.Contains(strings.ToLower(value), search) {
			return true
		}
	}
	return false
}

func containsStatus(statuses []model.RouteStatus, status model.RouteStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func window[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
