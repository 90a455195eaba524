package model

import "time"

type Organizer struct {
	DTO
	Name   string  `gorm:"not null" json:"name"`
	Email  string  `gorm:"uniqueIndex;not null" json:"email"`
	Phone  string  `json:"phone"`
	Events []Event `gorm:"foreignKey:OrganizerId" json:"-"`
}

type Event struct {
	DTO
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;size:120" json:"slug"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `gorm:"not null" json:"startsAt"`
	EndsAt      time.Time `gorm:"not null" json:"endsAt"`
	OrganizerId uint      `gorm:"index;not null" json:"organizerId"`

	Organizer   Organizer    `gorm:"foreignKey:OrganizerId" json:"-"`
	TicketTypes []TicketType `gorm:"foreignKey:EventId" json:"-"`
}

type TicketType struct {
	DTO
	EventId  uint    `gorm:"index;not null" json:"eventId"`
	Name     string  `gorm:"not null" json:"name"`
	Price    float64 `gorm:"not null" json:"price"`
	Currency string  `gorm:"size:3;default:'IDR'" json:"currency"`
	Quantity int     `gorm:"not null" json:"quantity"`
	// Sold only moves inside TicketLifecycle.ApproveOrder / RefundOrder.
	Sold int `gorm:"not null;default:0" json:"sold"`

	Event Event `gorm:"foreignKey:EventId" json:"-"`
}
