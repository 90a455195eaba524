package model

import "time"

const (
	WristbandPending = "PENDING"
	WristbandActive  = "ACTIVE"
	WristbandExpired = "EXPIRED"
	WristbandRevoked = "REVOKED"
)

type Wristband struct {
	DTO
	PublicCode  string `gorm:"uniqueIndex;size:48" json:"publicCode"`
	EventId     uint   `gorm:"index;not null" json:"eventId"`
	OrganizerId uint   `gorm:"index;not null" json:"organizerId"`
	Name        string `gorm:"not null" json:"name"`

	IsReusable bool `gorm:"not null;default:true" json:"isReusable"`
	// ScanCount only moves inside WristbandManager.Scan.
	ScanCount int  `gorm:"not null;default:0" json:"scanCount"`
	MaxScans  *int `json:"maxScans,omitempty"`

	ValidFrom  *time.Time `json:"validFrom,omitempty"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`

	Status        string     `gorm:"not null;default:'ACTIVE'" json:"status"`
	RevokedReason string     `json:"revokedReason,omitempty"`
	DeletedAt     *time.Time `gorm:"index" json:"deletedAt,omitempty"`

	Event     Event     `gorm:"foreignKey:EventId" json:"-"`
	Organizer Organizer `gorm:"foreignKey:OrganizerId" json:"-"`
}

type CreateWristbandInput struct {
	EventId    uint       `json:"eventId" validate:"required,gt=0"`
	Name       string     `json:"name" validate:"required,max=120"`
	MaxScans   *int       `json:"maxScans" validate:"omitempty,gt=0"`
	ValidFrom  *time.Time `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil"`
}

type UpdateWristbandInput struct {
	Name       string     `json:"name" validate:"omitempty,max=120"`
	MaxScans   *int       `json:"maxScans" validate:"omitempty,gt=0"`
	ValidFrom  *time.Time `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil"`
}

type RevokeWristbandInput struct {
	Reason string `json:"reason" validate:"required"`
}
