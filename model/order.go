package model

import "time"

const (
	OrderPending = "PENDING"
	OrderSuccess = "SUCCESS"
	OrderFailed  = "FAILED"
)

const (
	PaymentGateway = "GATEWAY"
	PaymentManual  = "MANUAL"
)

type Order struct {
	DTO
	PublicCode    string  `gorm:"uniqueIndex;size:20" json:"publicCode"`
	EventId       uint    `gorm:"index;not null" json:"eventId"`
	Status        string  `gorm:"not null;default:'PENDING'" json:"status"`
	PaymentMethod string  `gorm:"not null" json:"paymentMethod"`
	TotalAmount   float64 `json:"totalAmount"`
	BuyerName     string  `json:"buyerName"`
	BuyerEmail    string  `json:"buyerEmail"`
	BuyerPhone    string  `json:"buyerPhone"`

	PaidAt         *time.Time `json:"paidAt,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	RefundedAt     *time.Time `json:"refundedAt,omitempty"`
	RejectedReason string     `json:"rejectedReason,omitempty"`

	Event   Event       `gorm:"foreignKey:EventId" json:"-"`
	Items   []OrderItem `gorm:"foreignKey:OrderId" json:"items,omitempty"`
	Tickets []Ticket    `gorm:"foreignKey:OrderId" json:"tickets,omitempty"`
}

type OrderItem struct {
	DTO
	OrderId      uint    `gorm:"index;not null" json:"orderId"`
	TicketTypeId uint    `gorm:"not null" json:"ticketTypeId"`
	Quantity     int     `gorm:"not null" json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`

	TicketType TicketType `gorm:"foreignKey:TicketTypeId" json:"-"`
}

type OrderItemInput struct {
	TicketTypeId uint `json:"ticketTypeId" validate:"required,gt=0"`
	Quantity     int  `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderInput struct {
	EventId       uint             `json:"eventId" validate:"required,gt=0"`
	PaymentMethod string           `json:"paymentMethod" validate:"required,oneof=GATEWAY MANUAL"`
	BuyerName     string           `json:"buyerName" validate:"required"`
	BuyerEmail    string           `json:"buyerEmail" validate:"omitempty,email"`
	BuyerPhone    string           `json:"buyerPhone" validate:"omitempty"`
	Items         []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type ConfirmPaymentInput struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference" validate:"omitempty,max=100"`
}

type RejectOrderInput struct {
	Reason string `json:"reason" validate:"required"`
}
