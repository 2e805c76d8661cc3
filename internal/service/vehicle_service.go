package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

type VehicleService struct {
	store repository.Store
	log   zerolog.Logger
}

func NewVehicleService(store repository.Store, log zerolog.Logger) *VehicleService {
	return &VehicleService{store: store, log: log}
}

type VehicleInput struct {
	Plate    string
	Make     string
	Model    string
	Year     int
	Capacity int
	Status   string
}

type ListVehiclesOptions struct {
	Search string
	Status *model.VehicleStatus
	Limit  int
	Offset int
}

func (s *VehicleService) Create(ctx context.Context, input VehicleInput) (*model.VehicleRecord, error) {
	vehicle, err := vehicleFromInput(input)
	if err != nil {
		return nil, err
	}

	// A vehicle cannot be created already on route: it has no routes yet.
	if vehicle.Status == model.VehicleStatusOnRoute {
		return nil, ruleErr("a new vehicle cannot be created with status %s", model.VehicleStatusOnRoute)
	}

	if err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		if err := s.checkPlateUnique(ctx, tx, vehicle.Plate, uuid.Nil); err != nil {
			return err
		}
		if err := tx.SaveVehicle(ctx, vehicle); err != nil {
			return storeErr("save vehicle", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	record := s.buildRecord(*vehicle, false)
	return &record, nil
}

func (s *VehicleService) Update(ctx context.Context, id uuid.UUID, input VehicleInput) (*model.VehicleRecord, error) {
	updated, err := vehicleFromInput(input)
	if err != nil {
		return nil, err
	}

	var record model.VehicleRecord
	if err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		vehicle, err := tx.FindVehicle(ctx, id)
		if err != nil {
			return storeErr("find vehicle", err)
		}

		if updated.Plate != vehicle.Plate {
			if err := s.checkPlateUnique(ctx, tx, updated.Plate, vehicle.ID); err != nil {
				return err
			}
		}
		if updated.Status != vehicle.Status {
			if err := s.checkStatusChange(ctx, tx, vehicle.ID, updated.Status); err != nil {
				return err
			}
		}

		vehicle.Plate = updated.Plate
		vehicle.Make = updated.Make
		vehicle.Model = updated.Model
		vehicle.Year = updated.Year
		vehicle.Capacity = updated.Capacity
		vehicle.Status = updated.Status

		if err := tx.SaveVehicle(ctx, vehicle); err != nil {
			return storeErr("save vehicle", err)
		}

		active, err := tx.CountRoutesForVehicle(ctx, vehicle.ID, model.RouteStatusInProgress)
		if err != nil {
			return storeErr("count routes", err)
		}
		record = s.buildRecord(*vehicle, active > 0)
		return nil
	}); err != nil {
		return nil, err
	}

	return &record, nil
}

// SetStatus applies a standalone status change, holding the two rules that
// couple vehicle status to route state: a vehicle with a route in progress
// cannot become Available, and a vehicle without one cannot become OnRoute.
func (s *VehicleService) SetStatus(ctx context.Context, id uuid.UUID, rawStatus string) (*model.VehicleRecord, error) {
	status, fe := model.ParseVehicleStatus(strings.TrimSpace(rawStatus))
	if fe != nil {
		return nil, validationErr(fe)
	}

	var record model.VehicleRecord
	if err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		vehicle, err := tx.FindVehicle(ctx, id)
		if err != nil {
			return storeErr("find vehicle", err)
		}

		if vehicle.Status != status {
			if err := s.checkStatusChange(ctx, tx, vehicle.ID, status); err != nil {
				return err
			}
			vehicle.Status = status
			if err := tx.SaveVehicle(ctx, vehicle); err != nil {
				return storeErr("save vehicle", err)
			}
		}

		active, err := tx.CountRoutesForVehicle(ctx, vehicle.ID, model.RouteStatusInProgress)
		if err != nil {
			return storeErr("count routes", err)
		}
		record = s.buildRecord(*vehicle, active > 0)
		return nil
	}); err != nil {
		return nil, err
	}

	return &record, nil
}

// Delete removes a vehicle. Deletion is only permitted for vehicles with
// zero route history; the cascade on routes.vehicle_id therefore never
// fires in correct operation.
func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.InTransaction(ctx, func(tx repository.Store) error {
		vehicle, err := tx.FindVehicle(ctx, id)
		if err != nil {
			return storeErr("find vehicle", err)
		}

		active, err := tx.CountRoutesForVehicle(ctx, vehicle.ID, model.RouteStatusInProgress)
		if err != nil {
			return storeErr("count routes", err)
		}
		if active > 0 {
			return ruleErr("cannot delete a vehicle with a route in progress")
		}

		total, err := tx.CountRoutesForVehicle(ctx, vehicle.ID)
		if err != nil {
			return storeErr("count routes", err)
		}
		if total > 0 {
			return ruleErr("cannot delete a vehicle with associated routes")
		}

		if err := tx.DeleteVehicle(ctx, vehicle.ID); err != nil {
			return storeErr("delete vehicle", err)
		}
		return nil
	})
}

func (s *VehicleService) Get(ctx context.Context, id uuid.UUID) (*model.VehicleRecord, error) {
	vehicle, err := s.store.FindVehicle(ctx, id)
	if err != nil {
		return nil, storeErr("find vehicle", err)
	}

	routes, err := s.store.ListRoutesForVehicle(ctx, vehicle.ID)
	if err != nil {
		return nil, storeErr("list routes", err)
	}

	hasActive := false
	records := make([]model.RouteRecord, 0, len(routes))
	for _, route := range routes {
		if route.Status == model.RouteStatusInProgress {
			hasActive = true
		}
		records = append(records, buildRouteRecord(route, vehicle))
	}

	record := s.buildRecord(*vehicle, hasActive)
	record.Routes = records
	return &record, nil
}

func (s *VehicleService) List(ctx context.Context, opts ListVehiclesOptions) ([]model.VehicleRecord, error) {
	vehicles, err := s.store.ListVehicles(ctx, repository.VehicleFilter{
		Search: opts.Search,
		Status: opts.Status,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		return nil, storeErr("list vehicles", err)
	}

	// One pass over the active routes instead of a count per vehicle.
	inProgress := model.RouteStatusInProgress
	active, err := s.store.ListRoutes(ctx, repository.RouteFilter{Status: &inProgress})
	if err != nil {
		return nil, storeErr("list routes", err)
	}
	activeByVehicle := make(map[uuid.UUID]bool, len(active))
	for _, route := range active {
		if route.VehicleID != nil {
			activeByVehicle[*route.VehicleID] = true
		}
	}

	records := make([]model.VehicleRecord, 0, len(vehicles))
	for _, vehicle := range vehicles {
		records = append(records, s.buildRecord(vehicle, activeByVehicle[vehicle.ID]))
	}
	return records, nil
}

func (s *VehicleService) Stats(ctx context.Context) (*model.FleetStats, error) {
	available := model.VehicleStatusAvailable
	inProgress := model.RouteStatusInProgress

	totalVehicles, err := s.store.CountVehicles(ctx, nil)
	if err != nil {
		return nil, storeErr("count vehicles", err)
	}
	availableVehicles, err := s.store.CountVehicles(ctx, &available)
	if err != nil {
		return nil, storeErr("count vehicles", err)
	}
	totalRoutes, err := s.store.CountRoutes(ctx, nil)
	if err != nil {
		return nil, storeErr("count routes", err)
	}
	activeRoutes, err := s.store.CountRoutes(ctx, &inProgress)
	if err != nil {
		return nil, storeErr("count routes", err)
	}

	return &model.FleetStats{
		TotalVehicles:     totalVehicles,
		AvailableVehicles: availableVehicles,
		TotalRoutes:       totalRoutes,
		ActiveRoutes:      activeRoutes,
	}, nil
}

// Reconcile sweeps the whole fleet and repairs vehicle status drift in a
// single transaction: vehicles with an InProgress route become OnRoute,
// vehicles marked OnRoute without one become Available. Idempotent; runs
// at startup and on demand. Drift is corrected, never reported as an error.
func (s *VehicleService) Reconcile(ctx context.Context) (int, error) {
	corrected := 0
	err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		inProgress := model.RouteStatusInProgress
		active, err := tx.ListRoutes(ctx, repository.RouteFilter{Status: &inProgress})
		if err != nil {
			return storeErr("list routes", err)
		}

		activeByVehicle := make(map[uuid.UUID]bool, len(active))
		for _, route := range active {
			if route.VehicleID != nil {
				activeByVehicle[*route.VehicleID] = true
			}
		}

		for vehicleID := range activeByVehicle {
			vehicle, err := tx.FindVehicle(ctx, vehicleID)
			if err != nil {
				return storeErr("find vehicle", err)
			}
			if vehicle.Status == model.VehicleStatusOnRoute {
				continue
			}
			s.log.Info().
				Str("plate", vehicle.Plate).
				Str("from", string(vehicle.Status)).
				Str("to", string(model.VehicleStatusOnRoute)).
				Msg("reconciling vehicle status")
			vehicle.Status = model.VehicleStatusOnRoute
			if err := tx.SaveVehicle(ctx, vehicle); err != nil {
				return storeErr("save vehicle", err)
			}
			corrected++
		}

		onRoute := model.VehicleStatusOnRoute
		stale, err := tx.ListVehicles(ctx, repository.VehicleFilter{Status: &onRoute})
		if err != nil {
			return storeErr("list vehicles", err)
		}
		for _, vehicle := range stale {
			if activeByVehicle[vehicle.ID] {
				continue
			}
			s.log.Info().
				Str("plate", vehicle.Plate).
				Str("from", string(vehicle.Status)).
				Str("to", string(model.VehicleStatusAvailable)).
				Msg("reconciling vehicle status")
			vehicle.Status = model.VehicleStatusAvailable
			if err := tx.SaveVehicle(ctx, &vehicle); err != nil {
				return storeErr("save vehicle", err)
			}
			corrected++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return corrected, nil
}

func (s *VehicleService) checkStatusChange(ctx context.Context, tx repository.Store, vehicleID uuid.UUID, target model.VehicleStatus) error {
	active, err := tx.CountRoutesForVehicle(ctx, vehicleID, model.RouteStatusInProgress)
	if err != nil {
		return storeErr("count routes", err)
	}
	if target == model.VehicleStatusAvailable && active > 0 {
		return ruleErr("cannot mark a vehicle available while it has a route in progress")
	}
	if target == model.VehicleStatusOnRoute && active == 0 {
		return ruleErr("cannot mark a vehicle on route without a route in progress")
	}
	return nil
}

func (s *VehicleService) checkPlateUnique(ctx context.Context, tx repository.Store, plate string, selfID uuid.UUID) error {
	existing, err := tx.FindVehicleByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return storeErr("find vehicle by plate", err)
	}
	if existing.ID != selfID {
		return ruleErr("a vehicle with plate %s already exists", plate)
	}
	return nil
}

func (s *VehicleService) buildRecord(vehicle model.Vehicle, hasActive bool) model.VehicleRecord {
	return model.VehicleRecord{
		Vehicle:        vehicle,
		DisplayName:    vehicle.DisplayName(),
		AgeYears:       vehicle.AgeYears(time.Now()),
		HasActiveRoute: hasActive,
	}
}

// vehicleFromInput validates and normalizes every field, returning a
// ValidationError on the first violation.
func vehicleFromInput(input VehicleInput) (*model.Vehicle, error) {
	plate := model.NormalizePlate(input.Plate)
	if fe := model.ValidatePlate(plate); fe != nil {
		return nil, validationErr(fe)
	}
	make := strings.TrimSpace(input.Make)
	if fe := model.ValidateMake(make); fe != nil {
		return nil, validationErr(fe)
	}
	mdl := strings.TrimSpace(input.Model)
	if fe := model.ValidateModel(mdl); fe != nil {
		return nil, validationErr(fe)
	}
	if fe := model.ValidateYear(input.Year); fe != nil {
		return nil, validationErr(fe)
	}
	if fe := model.ValidateCapacity(input.Capacity); fe != nil {
		return nil, validationErr(fe)
	}

	status := model.VehicleStatusAvailable
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, fe := model.ParseVehicleStatus(raw)
		if fe != nil {
			return nil, validationErr(fe)
		}
		status = parsed
	}

	return &model.Vehicle{
		Plate:    plate,
		Make:     make,
		Model:    mdl,
		Year:     input.Year,
		Capacity: input.Capacity,
		Status:   status,
	}, nil
}
