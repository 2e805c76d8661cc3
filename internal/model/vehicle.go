package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "Available"
	VehicleStatusOnRoute     VehicleStatus = "OnRoute"
	VehicleStatusMaintenance VehicleStatus = "Maintenance"
)

type Vehicle struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Plate     string        `gorm:"type:varchar(8);not null;uniqueIndex:uniq_vehicles_plate" json:"plate"`
	Make      string        `gorm:"type:varchar(50);not null" json:"make"`
	Model     string        `gorm:"type:varchar(50);not null" json:"model"`
	Year      int           `gorm:"not null" json:"year"`
	Capacity  int           `gorm:"not null" json:"capacity"`
	Status    VehicleStatus `gorm:"type:vehicle_status;not null;default:'Available'" json:"status"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	Routes []Route `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// DisplayName is the human label used in listings, e.g. "Volvo FH16 (ABC1234)".
func (v Vehicle) DisplayName() string {
	return fmt.Sprintf("%s %s (%s)", v.Make, v.Model, v.Plate)
}

func (v Vehicle) AgeYears(now time.Time) int {
	age := now.Year() - v.Year
	if age < 0 {
		return 0
	}
	return age
}
