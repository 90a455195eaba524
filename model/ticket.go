package model

import "time"

const (
	TicketPending   = "PENDING"
	TicketActive    = "ACTIVE"
	TicketUsed      = "USED"
	TicketCancelled = "CANCELLED"
	TicketExpired   = "EXPIRED"
	TicketRefunded  = "REFUNDED"
)

type Ticket struct {
	DTO
	PublicCode   string `gorm:"uniqueIndex;size:48" json:"publicCode"`
	OrderId      uint   `gorm:"index;not null" json:"orderId"`
	TicketTypeId uint   `gorm:"index;not null" json:"ticketTypeId"`
	EventId      uint   `gorm:"index;not null" json:"eventId"`
	Status       string `gorm:"not null;default:'PENDING'" json:"status"`

	CheckedIn   bool       `gorm:"not null;default:false" json:"checkedIn"`
	CheckedInAt *time.Time `json:"checkedInAt,omitempty"`

	Order      Order      `gorm:"foreignKey:OrderId" json:"-"`
	TicketType TicketType `gorm:"foreignKey:TicketTypeId" json:"-"`
	Event      Event      `gorm:"foreignKey:EventId" json:"-"`
}

type FilterTicketInput struct {
	Pagination
	EventId uint   `json:"eventId" validate:"omitempty,gt=0"`
	Status  string `json:"status" validate:"omitempty,oneof=PENDING ACTIVE USED CANCELLED EXPIRED REFUNDED"`
}
