package service

import (
	"errors"
	"time"

	"vbtix/credential"
	"vbtix/helper"
	"vbtix/model"

	"gorm.io/gorm"
)

// Grace period after the event end during which an issued ticket credential
// still decrypts and validates, so late check-out flows keep working.
const ticketExpiryGrace = 6 * time.Hour

// TicketLifecycle owns the order/ticket state machine and is the only
// component allowed to mutate ticket status or TicketType.Sold.
//
// Two independent actors drive the same machine: the payment verifier fires
// ConfirmPayment and the organizer fires ApproveOrder/RejectOrder. Sold moves
// exactly once per order, inside ApproveOrder.
type TicketLifecycle struct {
	db    *gorm.DB
	codec *credential.Codec
	now   func() time.Time
}

func NewTicketLifecycle(db *gorm.DB, codec *credential.Codec) *TicketLifecycle {
	return &TicketLifecycle{db: db, codec: codec, now: time.Now}
}

// IssuedCredential pairs an activated ticket with its freshly encrypted
// payload, ready for rendering and delivery.
type IssuedCredential struct {
	Ticket    model.Ticket
	Encrypted string
}

// CreateOrder creates the order, its line items and one PENDING ticket per
// purchased unit. Sold is not touched here; the availability check is only a
// courtesy read so buyers learn about a sold-out type before paying.
func (s *TicketLifecycle) CreateOrder(input model.CreateOrderInput) (*model.Order, error) {
	var order model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var event model.Event
		if err := tx.First(&event, input.EventId).Error; err != nil {
			return err
		}

		order = model.Order{
			PublicCode:    helper.NewOrderCode(),
			EventId:       event.ID,
			Status:        model.OrderPending,
			PaymentMethod: input.PaymentMethod,
			BuyerName:     input.BuyerName,
			BuyerEmail:    input.BuyerEmail,
			BuyerPhone:    input.BuyerPhone,
		}

		var total float64
		var items []model.OrderItem
		for _, in := range input.Items {
			var tt model.TicketType
			if err := tx.Where("id = ? AND event_id = ?", in.TicketTypeId, event.ID).First(&tt).Error; err != nil {
				return err
			}
			if tt.Quantity-tt.Sold < in.Quantity {
				return ErrNotEnoughStock
			}
			total += tt.Price * float64(in.Quantity)
			items = append(items, model.OrderItem{
				TicketTypeId: tt.ID,
				Quantity:     in.Quantity,
				UnitPrice:    tt.Price,
			})
		}
		order.TotalAmount = total
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var tickets []model.Ticket
		for i := range items {
			items[i].OrderId = order.ID
			for range items[i].Quantity {
				tickets = append(tickets, model.Ticket{
					PublicCode:   helper.NewTicketCode(),
					OrderId:      order.ID,
					TicketTypeId: items[i].TicketTypeId,
					EventId:      event.ID,
					Status:       model.TicketPending,
				})
			}
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		if err := tx.Create(&tickets).Error; err != nil {
			return err
		}
		order.Items = items
		order.Tickets = tickets
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmPayment records the payment verifier's verdict. It only moves the
// order PENDING -> SUCCESS/FAILED; tickets and Sold are deliberately left
// alone, because funds received does not mean inventory committed.
func (s *TicketLifecycle) ConfirmPayment(orderCode string, success bool) (*model.Order, error) {
	var order model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("public_code = ?", orderCode).First(&order).Error; err != nil {
			return err
		}
		next := model.OrderFailed
		updates := map[string]any{"status": model.OrderFailed}
		if success {
			next = model.OrderSuccess
			updates["status"] = model.OrderSuccess
			updates["paid_at"] = s.now()
		}
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, model.OrderPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotPending
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ApproveOrder is the organizer's release of payment-verified inventory: the
// single operation that activates the order's tickets, increments Sold, and
// issues credentials. The approved_at claim makes a concurrent or repeated
// call observe ErrOrderNotPending and mutate nothing.
func (s *TicketLifecycle) ApproveOrder(orderCode string) ([]IssuedCredential, error) {
	var order model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Preload("Event").
			Where("public_code = ?", orderCode).First(&order).Error; err != nil {
			return err
		}

		// Atomic claim: only a paid, never-approved order passes.
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ? AND approved_at IS NULL", order.ID, model.OrderSuccess).
			Update("approved_at", s.now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotPending
		}

		for _, item := range order.Items {
			res := tx.Model(&model.TicketType{}).
				Where("id = ? AND sold + ? <= quantity", item.TicketTypeId, item.Quantity).
				UpdateColumn("sold", gorm.Expr("sold + ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotEnoughStock
			}
		}

		return tx.Model(&model.Ticket{}).
			Where("order_id = ? AND status = ?", order.ID, model.TicketPending).
			Update("status", model.TicketActive).Error
	})
	if err != nil {
		return nil, err
	}

	// Credential issuance happens after commit: the approval is authoritative
	// and a rendering or delivery hiccup must not roll it back.
	var tickets []model.Ticket
	if err := s.db.Where("order_id = ? AND status = ?", order.ID, model.TicketActive).
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	issued := make([]IssuedCredential, 0, len(tickets))
	for _, t := range tickets {
		enc, err := s.buildTicketCredential(t, order.Event)
		if err != nil {
			return nil, err
		}
		issued = append(issued, IssuedCredential{Ticket: t, Encrypted: enc})
	}
	return issued, nil
}

// RejectOrder cancels an unapproved order. Mutually exclusive with
// ApproveOrder through the same approved_at/status guard; Sold is untouched.
func (s *TicketLifecycle) RejectOrder(orderCode, reason string) (*model.Order, error) {
	var order model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("public_code = ?", orderCode).First(&order).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Order{}).
			Where("id = ? AND approved_at IS NULL AND status IN ?",
				order.ID, []string{model.OrderPending, model.OrderSuccess}).
			Updates(map[string]any{"status": model.OrderFailed, "rejected_reason": reason})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotPending
		}
		order.Status = model.OrderFailed
		order.RejectedReason = reason
		return tx.Model(&model.Ticket{}).
			Where("order_id = ? AND status = ?", order.ID, model.TicketPending).
			Update("status", model.TicketCancelled).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// RefundOrder marks the order's remaining PENDING/ACTIVE tickets REFUNDED and
// releases previously committed inventory back to the sold counter.
func (s *TicketLifecycle) RefundOrder(orderCode string) (*model.Order, error) {
	var order model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Where("public_code = ?", orderCode).First(&order).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Order{}).
			Where("id = ? AND refunded_at IS NULL", order.ID).
			Update("refunded_at", s.now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyRefunded
		}

		for _, item := range order.Items {
			var active int64
			if err := tx.Model(&model.Ticket{}).
				Where("order_id = ? AND ticket_type_id = ? AND status = ?",
					order.ID, item.TicketTypeId, model.TicketActive).
				Count(&active).Error; err != nil {
				return err
			}
			if active == 0 {
				continue
			}
			if err := tx.Model(&model.TicketType{}).
				Where("id = ? AND sold >= ?", item.TicketTypeId, active).
				UpdateColumn("sold", gorm.Expr("sold - ?", active)).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Ticket{}).
			Where("order_id = ? AND status IN ?",
				order.ID, []string{model.TicketPending, model.TicketActive}).
			Update("status", model.TicketRefunded).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CheckIn consumes a single-use ticket. The conditional update is the whole
// concurrency story: two near-simultaneous scans race on one row and exactly
// one sees ACTIVE.
func (s *TicketLifecycle) CheckIn(ticketId uint) (*model.Ticket, error) {
	var ticket model.Ticket
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := s.now()
		res := tx.Model(&model.Ticket{}).
			Where("id = ? AND status = ?", ticketId, model.TicketActive).
			Updates(map[string]any{
				"status":        model.TicketUsed,
				"checked_in":    true,
				"checked_in_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.First(&ticket, ticketId).Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			if ticket.Status == model.TicketUsed {
				return ErrAlreadyUsed
			}
			return ErrNotActive
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CheckInByCode resolves a ticket public code (from a decrypted credential)
// and checks it in.
func (s *TicketLifecycle) CheckInByCode(publicCode string) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := s.db.Where("public_code = ?", publicCode).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnrecognizedCredential
		}
		return nil, err
	}
	return s.CheckIn(ticket.ID)
}

// ExpireOverdue sweeps ACTIVE tickets whose event has ended into EXPIRED.
// Sold stays where it is: the inventory was committed and consumed-by-time.
func (s *TicketLifecycle) ExpireOverdue() (int64, error) {
	sub := s.db.Model(&model.Event{}).Select("id").Where("ends_at < ?", s.now())
	res := s.db.Model(&model.Ticket{}).
		Where("status = ? AND event_id IN (?)", model.TicketActive, sub).
		Update("status", model.TicketExpired)
	return res.RowsAffected, res.Error
}

// TicketCredential regenerates the encrypted payload for an ACTIVE ticket.
// Payloads are never stored, so reissue always produces a fresh one.
func (s *TicketLifecycle) TicketCredential(ticketId, organizerId uint) (*model.Ticket, string, error) {
	var ticket model.Ticket
	if err := s.db.Preload("Event").First(&ticket, ticketId).Error; err != nil {
		return nil, "", err
	}
	if ticket.Event.OrganizerId != organizerId {
		return nil, "", ErrWrongEvent
	}
	if ticket.Status != model.TicketActive {
		return nil, "", ErrNotActive
	}
	enc, err := s.buildTicketCredential(ticket, ticket.Event)
	if err != nil {
		return nil, "", err
	}
	return &ticket, enc, nil
}

func (s *TicketLifecycle) buildTicketCredential(t model.Ticket, event model.Event) (string, error) {
	payload := credential.Build(credential.KindTicket, credential.Fields{
		CredentialId:    t.PublicCode,
		EventId:         t.EventId,
		OwnerId:         event.OrganizerId,
		IssuedContextId: t.OrderId,
		TypeId:          t.TicketTypeId,
		ValidAnchor:     event.StartsAt,
	}, event.EndsAt.Add(ticketExpiryGrace))
	return s.codec.Encrypt(payload)
}
