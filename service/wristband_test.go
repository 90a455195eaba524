package service

import (
	"testing"
	"time"

	"vbtix/model"
	"vbtix/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) newWristband(t *testing.T, input model.CreateWristbandInput) *model.Wristband {
	t.Helper()
	if input.EventId == 0 {
		input.EventId = f.event.ID
	}
	if input.Name == "" {
		input.Name = "Crew"
	}
	band, err := f.wristbands.Create(f.organizer.ID, input)
	require.NoError(t, err)
	return band
}

func (f *fixture) scanLogs(t *testing.T, wristbandId uint) []model.ScanLog {
	t.Helper()
	var logs []model.ScanLog
	require.NoError(t, f.db.Where("wristband_id = ?", wristbandId).Order("id").Find(&logs).Error)
	return logs
}

func TestWristbandCreateIsActiveImmediately(t *testing.T) {
	f := newFixture(t)
	band := f.newWristband(t, model.CreateWristbandInput{})

	assert.Equal(t, model.WristbandActive, band.Status)
	assert.True(t, band.IsReusable)
	assert.Zero(t, band.ScanCount)
}

func TestWristbandCreateRejectsForeignEvent(t *testing.T) {
	f := newFixture(t)

	other := model.Organizer{Name: "Other", Email: "other@vbtix.local"}
	require.NoError(t, f.db.Create(&other).Error)

	_, err := f.wristbands.Create(other.ID, model.CreateWristbandInput{
		EventId: f.event.ID,
		Name:    "Intruder",
	})
	assert.ErrorIs(t, err, ErrWrongEvent)
}

func TestBoundedReuse(t *testing.T) {
	f := newFixture(t)
	band := f.newWristband(t, model.CreateWristbandInput{
		Name:     "Backstage",
		MaxScans: utils.Ptr(3),
	})

	for i := 1; i <= 3; i++ {
		got, err := f.wristbands.Scan(band.ID, "gate-a", "north entrance", "scanner-1")
		require.NoError(t, err, "scan %d should pass", i)
		assert.Equal(t, i, got.ScanCount)
	}

	_, err := f.wristbands.Scan(band.ID, "gate-a", "north entrance", "scanner-1")
	assert.ErrorIs(t, err, ErrScanLimitExceeded)

	logs := f.scanLogs(t, band.ID)
	require.Len(t, logs, 4, "rejected attempts belong in the ledger too")
	for i := 0; i < 3; i++ {
		assert.True(t, logs[i].Success)
		assert.Equal(t, "ok", logs[i].Reason)
	}
	assert.False(t, logs[3].Success)
	assert.Equal(t, "scan limit reached", logs[3].Reason)
	assert.Equal(t, "gate-a", logs[3].ScannedBy)
}

func TestLazyActivationAtScanTime(t *testing.T) {
	f := newFixture(t)
	start := time.Now().Add(2 * time.Hour)
	band := f.newWristband(t, model.CreateWristbandInput{
		Name:      "Day Two",
		ValidFrom: &start,
	})
	require.Equal(t, model.WristbandPending, band.Status)

	_, err := f.wristbands.Scan(band.ID, "gate-b", "", "")
	assert.ErrorIs(t, err, ErrNotYetValid)

	// The window opens; no scheduler runs, the scan itself activates it.
	f.wristbands.now = func() time.Time { return start.Add(time.Minute) }
	got, err := f.wristbands.Scan(band.ID, "gate-b", "", "")
	require.NoError(t, err)
	assert.Equal(t, model.WristbandActive, got.Status)
	assert.Equal(t, 1, got.ScanCount)

	logs := f.scanLogs(t, band.ID)
	require.Len(t, logs, 2)
	assert.False(t, logs[0].Success)
	assert.Equal(t, "not yet valid", logs[0].Reason)
	assert.True(t, logs[1].Success)
}

func TestWindowExpiryIsPersistedOnScan(t *testing.T) {
	f := newFixture(t)
	until := time.Now().Add(time.Hour)
	band := f.newWristband(t, model.CreateWristbandInput{
		Name:       "Weekend",
		ValidUntil: &until,
	})

	f.wristbands.now = func() time.Time { return until.Add(time.Minute) }
	_, err := f.wristbands.Scan(band.ID, "gate-c", "", "")
	assert.ErrorIs(t, err, ErrExpired)

	var stored model.Wristband
	require.NoError(t, f.db.First(&stored, band.ID).Error)
	assert.Equal(t, model.WristbandExpired, stored.Status)
	assert.Zero(t, stored.ScanCount)

	logs := f.scanLogs(t, band.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, "expired", logs[0].Reason)
}

func TestValidateIsReadOnly(t *testing.T) {
	f := newFixture(t)
	band := f.newWristband(t, model.CreateWristbandInput{MaxScans: utils.Ptr(1)})

	_, err := f.wristbands.Validate(band.ID, f.organizer.ID)
	require.NoError(t, err)

	var stored model.Wristband
	require.NoError(t, f.db.First(&stored, band.ID).Error)
	assert.Zero(t, stored.ScanCount, "validate must not count")
	assert.Empty(t, f.scanLogs(t, band.ID), "validate must not write the ledger")
}

func TestRevokeIsTerminal(t *testing.T) {
	f := newFixture(t)
	band := f.newWristband(t, model.CreateWristbandInput{})

	_, err := f.wristbands.Scan(band.ID, "gate-a", "", "")
	require.NoError(t, err)

	require.NoError(t, f.wristbands.Revoke(band.ID, f.organizer.ID, "reported stolen"))

	var stored model.Wristband
	require.NoError(t, f.db.First(&stored, band.ID).Error)
	assert.Equal(t, model.WristbandRevoked, stored.Status)
	assert.Equal(t, "reported stolen", stored.RevokedReason)
	require.NotNil(t, stored.DeletedAt)

	// Second revoke, update, scan and validate all refuse.
	assert.ErrorIs(t, f.wristbands.Revoke(band.ID, f.organizer.ID, "again"), ErrRevoked)

	_, err = f.wristbands.Update(band.ID, f.organizer.ID, model.UpdateWristbandInput{Name: "Renamed"})
	assert.ErrorIs(t, err, ErrRevoked)

	_, err = f.wristbands.Scan(band.ID, "gate-a", "", "")
	assert.ErrorIs(t, err, ErrRevoked)

	_, err = f.wristbands.Validate(band.ID, f.organizer.ID)
	assert.ErrorIs(t, err, ErrRevoked)

	// Revocation keeps the scan history.
	logs := f.scanLogs(t, band.ID)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].Success)
	assert.Equal(t, "revoked", logs[1].Reason)
}

func TestUpdateMutatesDescriptiveFields(t *testing.T) {
	f := newFixture(t)
	band := f.newWristband(t, model.CreateWristbandInput{Name: "Crew"})

	until := time.Now().Add(48 * time.Hour)
	updated, err := f.wristbands.Update(band.ID, f.organizer.ID, model.UpdateWristbandInput{
		Name:       "Crew - extended",
		MaxScans:   utils.Ptr(10),
		ValidUntil: &until,
	})
	require.NoError(t, err)
	assert.Equal(t, "Crew - extended", updated.Name)
	require.NotNil(t, updated.MaxScans)
	assert.Equal(t, 10, *updated.MaxScans)
	require.NotNil(t, updated.ValidUntil)

	// Fields left empty in the input are preserved.
	again, err := f.wristbands.Update(band.ID, f.organizer.ID, model.UpdateWristbandInput{})
	require.NoError(t, err)
	assert.Equal(t, "Crew - extended", again.Name)
	require.NotNil(t, again.MaxScans)
}

func TestWristbandCredentialRoundTrip(t *testing.T) {
	f := newFixture(t)
	band := f.newWristband(t, model.CreateWristbandInput{})

	_, encrypted, err := f.wristbands.Credential(band.ID, f.organizer.ID)
	require.NoError(t, err)

	payload, err := f.codec.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, band.PublicCode, payload.CredentialId)
	assert.Equal(t, band.EventId, payload.EventId)
}

func TestWristbandReadsRefuseForeignOrganizer(t *testing.T) {
	f := newFixture(t)
	band := f.newWristband(t, model.CreateWristbandInput{})
	stranger := f.organizer.ID + 99

	_, err := f.wristbands.Validate(band.ID, stranger)
	assert.ErrorIs(t, err, ErrWrongEvent)

	_, _, err = f.wristbands.ListScans(band.ID, stranger, nil, nil)
	assert.ErrorIs(t, err, ErrWrongEvent)

	_, _, err = f.wristbands.Credential(band.ID, stranger)
	assert.ErrorIs(t, err, ErrWrongEvent)

	// The owner still reads everything.
	_, _, err = f.wristbands.Credential(band.ID, f.organizer.ID)
	require.NoError(t, err)
	logs, total, err := f.wristbands.ListScans(band.ID, f.organizer.ID, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, logs)
}
