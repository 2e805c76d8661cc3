package repository

import (
	"context"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

func (s *gormStore) FindVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := s.db.WithContext(ctx).
		First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (s *gormStore) FindVehicleByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := s.db.WithContext(ctx).
		First(&vehicle, "plate = ?", plate).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (s *gormStore) ListVehicles(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error) {
	query := s.db.WithContext(ctx).Model(&model.Vehicle{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(plate ILIKE ? OR make ILIKE ? OR model ILIKE ?)", search, search, search)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var vehicles []model.Vehicle
	if err := query.Order("vehicles.created_at DESC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (s *gormStore) CountVehicles(ctx context.Context, status *model.VehicleStatus) (int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Vehicle{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *gormStore) SaveVehicle(ctx context.Context, vehicle *model.Vehicle) error {
	return s.db.WithContext(ctx).Save(vehicle).Error
}

func (s *gormStore) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&model.Vehicle{}, "id = ?", id).Error
}
