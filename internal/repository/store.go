package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type VehicleFilter struct {
	Search string
	Status *model.VehicleStatus
	Limit  int
	Offset int
}

type RouteFilter struct {
	Search    string
	Status    *model.RouteStatus
	VehicleID *uuid.UUID
	Limit     int
	Offset    int
}

// Store is the persistence boundary consumed by the service layer. Reads
// resolve to gorm.ErrRecordNotFound when an id does not exist. InTransaction
// runs fn against a Store bound to a single transaction; commit and rollback
// are guaranteed on every exit path, so multi-entity mutations are never
// observable half-applied.
type Store interface {
	FindVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	FindVehicleByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
	ListVehicles(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error)
	CountVehicles(ctx context.Context, status *model.VehicleStatus) (int64, error)
	SaveVehicle(ctx context.Context, vehicle *model.Vehicle) error
	DeleteVehicle(ctx context.Context, id uuid.UUID) error

	FindRoute(ctx context.Context, id uuid.UUID) (*model.Route, error)
	ListRoutes(ctx context.Context, filter RouteFilter) ([]model.Route, error)
	ListRoutesForVehicle(ctx context.Context, vehicleID uuid.UUID, statuses ...model.RouteStatus) ([]model.Route, error)
	CountRoutesForVehicle(ctx context.Context, vehicleID uuid.UUID, statuses ...model.RouteStatus) (int64, error)
	CountRoutes(ctx context.Context, status *model.RouteStatus) (int64, error)
	SaveRoute(ctx context.Context, route *model.Route) error
	DeleteRoute(ctx context.Context, id uuid.UUID) error

	InTransaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) InTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
