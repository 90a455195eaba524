package model

import "time"

// ScanLog rows are append-only: written once by the wristband scan path,
// never updated or deleted afterwards.
type ScanLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WristbandId uint      `gorm:"index;not null" json:"wristbandId"`
	ScannedBy   string    `json:"scannedBy"`
	Location    string    `json:"location,omitempty"`
	Device      string    `json:"device,omitempty"`
	Success     bool      `gorm:"not null" json:"success"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`

	Wristband Wristband `gorm:"foreignKey:WristbandId" json:"-"`
}

const (
	ScanActionScan     = "scan"
	ScanActionValidate = "validate"
)

type ScanInput struct {
	Credential string `json:"credential" validate:"required"`
	Action     string `json:"action" validate:"omitempty,oneof=scan validate"`
	Location   string `json:"location" validate:"omitempty,max=160"`
	Device     string `json:"device" validate:"omitempty,max=120"`
}
