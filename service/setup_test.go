package service

import (
	"testing"
	"time"

	"vbtix/credential"
	"vbtix/database"
	"vbtix/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Single connection so the in-memory database is shared by every
	// transaction the services open.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	db         *gorm.DB
	codec      *credential.Codec
	lifecycle  *TicketLifecycle
	wristbands *WristbandManager
	dispatcher *ScanDispatcher

	organizer  model.Organizer
	event      model.Event
	ticketType model.TicketType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	codec := credential.NewCodec("fixture-secret")

	f := &fixture{
		db:         db,
		codec:      codec,
		lifecycle:  NewTicketLifecycle(db, codec),
		wristbands: NewWristbandManager(db, codec),
	}
	f.dispatcher = NewScanDispatcher(db, codec, f.lifecycle, f.wristbands)

	f.organizer = model.Organizer{Name: "Fixture Organizer", Email: "fixture@vbtix.local"}
	require.NoError(t, db.Create(&f.organizer).Error)

	start := time.Now().Add(24 * time.Hour)
	f.event = model.Event{
		Name:        "Fixture Concert",
		Slug:        "fixture-concert",
		Venue:       "Test Hall",
		StartsAt:    start,
		EndsAt:      start.Add(6 * time.Hour),
		OrganizerId: f.organizer.ID,
	}
	require.NoError(t, db.Create(&f.event).Error)

	f.ticketType = model.TicketType{
		EventId:  f.event.ID,
		Name:     "Regular",
		Price:    100,
		Currency: "IDR",
		Quantity: 100,
		Sold:     10,
	}
	require.NoError(t, db.Create(&f.ticketType).Error)

	return f
}

// newPaidOrder creates an order for qty units and walks it to payment
// SUCCESS, leaving the tickets PENDING.
func (f *fixture) newPaidOrder(t *testing.T, qty int) *model.Order {
	t.Helper()
	order := f.newOrder(t, qty)
	confirmed, err := f.lifecycle.ConfirmPayment(order.PublicCode, true)
	require.NoError(t, err)
	return confirmed
}

func (f *fixture) newOrder(t *testing.T, qty int) *model.Order {
	t.Helper()
	order, err := f.lifecycle.CreateOrder(model.CreateOrderInput{
		EventId:       f.event.ID,
		PaymentMethod: model.PaymentManual,
		BuyerName:     "Buyer",
		BuyerEmail:    "buyer@example.com",
		Items: []model.OrderItemInput{
			{TicketTypeId: f.ticketType.ID, Quantity: qty},
		},
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) soldCount(t *testing.T) int {
	t.Helper()
	var tt model.TicketType
	require.NoError(t, f.db.First(&tt, f.ticketType.ID).Error)
	return tt.Sold
}

func (f *fixture) ticketStatuses(t *testing.T, orderId uint) []string {
	t.Helper()
	var statuses []string
	require.NoError(t, f.db.Model(&model.Ticket{}).
		Where("order_id = ?", orderId).
		Order("id").
		Pluck("status", &statuses).Error)
	return statuses
}
