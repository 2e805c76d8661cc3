package repository

import (
	"context"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

func (s *gormStore) FindRoute(ctx context.Context, id uuid.UUID) (*model.Route, error) {
	var route model.Route
	if err := s.db.WithContext(ctx).
		Preload("Vehicle").
		First(&route, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (s *gormStore) ListRoutes(ctx context.Context, filter RouteFilter) ([]model.Route, error) {
	query := s.db.WithContext(ctx).Model(&model.Route{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(name ILIKE ? OR origin ILIKE ? OR destination ILIKE ?)", search, search, search)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var routes []model.Route
	if err := query.
		Order("routes.created_at DESC").
		Preload("Vehicle").
		Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *gormStore) ListRoutesForVehicle(ctx context.Context, vehicleID uuid.UUID, statuses ...model.RouteStatus) ([]model.Route, error) {
	query := s.db.WithContext(ctx).
		Model(&model.Route{}).
		Where("vehicle_id = ?", vehicleID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var routes []model.Route
	if err := query.Order("routes.created_at DESC").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *gormStore) CountRoutesForVehicle(ctx context.Context, vehicleID uuid.UUID, statuses ...model.RouteStatus) (int64, error) {
	query := s.db.WithContext(ctx).
		Model(&model.Route{}).
		Where("vehicle_id = ?", vehicleID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *gormStore) CountRoutes(ctx context.Context, status *model.RouteStatus) (int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Route{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *gormStore) SaveRoute(ctx context.Context, route *model.Route) error {
	return s.db.WithContext(ctx).Omit("Vehicle").Save(route).Error
}

func (s *gormStore) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&model.Route{}, "id = ?", id).Error
}
