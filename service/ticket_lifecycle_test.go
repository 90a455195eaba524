package service

import (
	"sync"
	"testing"
	"time"

	"vbtix/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderApprovalFlow(t *testing.T) {
	f := newFixture(t)

	// Two units of a type with quantity=100, sold=10.
	order := f.newOrder(t, 2)
	assert.Equal(t, []string{model.TicketPending, model.TicketPending}, f.ticketStatuses(t, order.ID))
	assert.Equal(t, 10, f.soldCount(t), "creating tickets must not touch sold")

	// Payment verified: funds received, inventory still uncommitted.
	confirmed, err := f.lifecycle.ConfirmPayment(order.PublicCode, true)
	require.NoError(t, err)
	assert.Equal(t, model.OrderSuccess, confirmed.Status)
	assert.Equal(t, []string{model.TicketPending, model.TicketPending}, f.ticketStatuses(t, order.ID))
	assert.Equal(t, 10, f.soldCount(t), "payment confirmation must not touch sold")

	// Organizer approval commits inventory and issues credentials.
	issued, err := f.lifecycle.ApproveOrder(order.PublicCode)
	require.NoError(t, err)
	assert.Len(t, issued, 2)
	for _, cred := range issued {
		assert.Equal(t, model.TicketActive, cred.Ticket.Status)
		assert.NotEmpty(t, cred.Encrypted)
	}
	assert.Equal(t, 12, f.soldCount(t))

	// Retried approval is a no-op observing the conflict.
	_, err = f.lifecycle.ApproveOrder(order.PublicCode)
	assert.ErrorIs(t, err, ErrOrderNotPending)
	assert.Equal(t, 12, f.soldCount(t))
}

func TestApproveRequiresVerifiedPayment(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder(t, 1)

	_, err := f.lifecycle.ApproveOrder(order.PublicCode)
	assert.ErrorIs(t, err, ErrOrderNotPending)
	assert.Equal(t, 10, f.soldCount(t))
	assert.Equal(t, []string{model.TicketPending}, f.ticketStatuses(t, order.ID))
}

func TestConfirmPaymentIsTerminal(t *testing.T) {
	f := newFixture(t)
	order := f.newOrder(t, 1)

	_, err := f.lifecycle.ConfirmPayment(order.PublicCode, false)
	require.NoError(t, err)

	_, err = f.lifecycle.ConfirmPayment(order.PublicCode, true)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestRejectCancelsWithoutTouchingSold(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 3)

	rejected, err := f.lifecycle.RejectOrder(order.PublicCode, "suspicious payment")
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, rejected.Status)
	assert.Equal(t, "suspicious payment", rejected.RejectedReason)
	assert.Equal(t, []string{model.TicketCancelled, model.TicketCancelled, model.TicketCancelled},
		f.ticketStatuses(t, order.ID))
	assert.Equal(t, 10, f.soldCount(t))

	// Approve after reject must hit the same guard.
	_, err = f.lifecycle.ApproveOrder(order.PublicCode)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}

func TestApproveAndRejectAreMutuallyExclusive(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 1)

	_, err := f.lifecycle.ApproveOrder(order.PublicCode)
	require.NoError(t, err)

	_, err = f.lifecycle.RejectOrder(order.PublicCode, "too late")
	assert.ErrorIs(t, err, ErrOrderNotPending)
	assert.Equal(t, []string{model.TicketActive}, f.ticketStatuses(t, order.ID))
	assert.Equal(t, 11, f.soldCount(t))
}

func TestConcurrentApprovalIncrementsOnce(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 2)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.lifecycle.ApproveOrder(order.PublicCode)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, ErrOrderNotPending)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "exactly one caller may approve")
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, 12, f.soldCount(t))
	assert.Equal(t, []string{model.TicketActive, model.TicketActive}, f.ticketStatuses(t, order.ID))
}

func TestCheckInIsSingleUse(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 1)
	issued, err := f.lifecycle.ApproveOrder(order.PublicCode)
	require.NoError(t, err)
	ticketId := issued[0].Ticket.ID

	used, err := f.lifecycle.CheckIn(ticketId)
	require.NoError(t, err)
	assert.Equal(t, model.TicketUsed, used.Status)
	assert.True(t, used.CheckedIn)
	require.NotNil(t, used.CheckedInAt)

	_, err = f.lifecycle.CheckIn(ticketId)
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestCheckInRequiresActivation(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 1)

	var ticket model.Ticket
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&ticket).Error)

	_, err := f.lifecycle.CheckIn(ticket.ID)
	assert.ErrorIs(t, err, ErrNotActive)

	_, err = f.lifecycle.RejectOrder(order.PublicCode, "cancelled")
	require.NoError(t, err)
	_, err = f.lifecycle.CheckIn(ticket.ID)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestConcurrentCheckInSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 1)
	issued, err := f.lifecycle.ApproveOrder(order.PublicCode)
	require.NoError(t, err)
	ticketId := issued[0].Ticket.ID

	const scanners = 6
	var wg sync.WaitGroup
	errs := make([]error, scanners)
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.lifecycle.CheckIn(ticketId)
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrAlreadyUsed)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestRefundReleasesCommittedInventory(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 2)
	_, err := f.lifecycle.ApproveOrder(order.PublicCode)
	require.NoError(t, err)
	require.Equal(t, 12, f.soldCount(t))

	_, err = f.lifecycle.RefundOrder(order.PublicCode)
	require.NoError(t, err)
	assert.Equal(t, 10, f.soldCount(t))
	assert.Equal(t, []string{model.TicketRefunded, model.TicketRefunded}, f.ticketStatuses(t, order.ID))

	_, err = f.lifecycle.RefundOrder(order.PublicCode)
	assert.ErrorIs(t, err, ErrAlreadyRefunded)
	assert.Equal(t, 10, f.soldCount(t))
}

func TestRefundBeforeApprovalLeavesSoldAlone(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 2)

	_, err := f.lifecycle.RefundOrder(order.PublicCode)
	require.NoError(t, err)
	assert.Equal(t, 10, f.soldCount(t))
	assert.Equal(t, []string{model.TicketRefunded, model.TicketRefunded}, f.ticketStatuses(t, order.ID))
}

func TestCreateOrderRejectsOversell(t *testing.T) {
	f := newFixture(t)

	_, err := f.lifecycle.CreateOrder(model.CreateOrderInput{
		EventId:       f.event.ID,
		PaymentMethod: model.PaymentGateway,
		BuyerName:     "Greedy",
		Items: []model.OrderItemInput{
			{TicketTypeId: f.ticketType.ID, Quantity: 91},
		},
	})
	assert.ErrorIs(t, err, ErrNotEnoughStock)
}

func TestExpireOverdueSweepsActiveTickets(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 1)
	_, err := f.lifecycle.ApproveOrder(order.PublicCode)
	require.NoError(t, err)

	// Nothing to expire while the event is still running.
	n, err := f.lifecycle.ExpireOverdue()
	require.NoError(t, err)
	assert.Zero(t, n)

	f.lifecycle.now = func() time.Time { return f.event.EndsAt.Add(time.Hour) }
	n, err = f.lifecycle.ExpireOverdue()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, []string{model.TicketExpired}, f.ticketStatuses(t, order.ID))
	assert.Equal(t, 11, f.soldCount(t), "expiry consumes inventory, it does not release it")
}

func TestTicketCredentialOnlyForActiveTickets(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 1)

	var ticket model.Ticket
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&ticket).Error)

	_, _, err := f.lifecycle.TicketCredential(ticket.ID, f.organizer.ID)
	assert.ErrorIs(t, err, ErrNotActive)

	_, err = f.lifecycle.ApproveOrder(order.PublicCode)
	require.NoError(t, err)

	_, encrypted, err := f.lifecycle.TicketCredential(ticket.ID, f.organizer.ID)
	require.NoError(t, err)

	payload, err := f.codec.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, ticket.PublicCode, payload.CredentialId)
}

func TestTicketCredentialRefusesForeignOrganizer(t *testing.T) {
	f := newFixture(t)
	order := f.newPaidOrder(t, 1)
	_, err := f.lifecycle.ApproveOrder(order.PublicCode)
	require.NoError(t, err)

	var ticket model.Ticket
	require.NoError(t, f.db.Where("order_id = ?", order.ID).First(&ticket).Error)

	_, _, err = f.lifecycle.TicketCredential(ticket.ID, f.organizer.ID+99)
	assert.ErrorIs(t, err, ErrWrongEvent)
}
