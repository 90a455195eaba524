package service

import (
	"errors"
	"time"

	"vbtix/credential"
	"vbtix/helper"
	"vbtix/model"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// Reusable credentials without an explicit validity window still expire
// eventually so a lost wristband cannot be replayed forever.
const wristbandDefaultTTL = 365 * 24 * time.Hour

// WristbandManager owns reusable-credential state: the scan counter, the
// validity window and revocation. It is independent of the order/payment
// flow; wristbands are created directly by an organizer.
type WristbandManager struct {
	db    *gorm.DB
	codec *credential.Codec
	now   func() time.Time
}

func NewWristbandManager(db *gorm.DB, codec *credential.Codec) *WristbandManager {
	return &WristbandManager{db: db, codec: codec, now: time.Now}
}

// Create issues a wristband for one of the organizer's events. A future
// validFrom leaves it PENDING; activation is evaluated lazily at scan time,
// there is no scheduler flipping statuses.
func (s *WristbandManager) Create(organizerId uint, input model.CreateWristbandInput) (*model.Wristband, error) {
	var event model.Event
	if err := s.db.First(&event, input.EventId).Error; err != nil {
		return nil, err
	}
	if event.OrganizerId != organizerId {
		return nil, ErrWrongEvent
	}

	status := model.WristbandActive
	if input.ValidFrom != nil && input.ValidFrom.After(s.now()) {
		status = model.WristbandPending
	}
	band := model.Wristband{
		PublicCode:  helper.NewWristbandCode(),
		EventId:     event.ID,
		OrganizerId: organizerId,
		Name:        input.Name,
		IsReusable:  true,
		MaxScans:    input.MaxScans,
		ValidFrom:   input.ValidFrom,
		ValidUntil:  input.ValidUntil,
		Status:      status,
	}
	if err := s.db.Create(&band).Error; err != nil {
		return nil, err
	}
	return &band, nil
}

// Update mutates descriptive and validity fields. Refused on a REVOKED
// wristband; revocation is terminal.
func (s *WristbandManager) Update(id, organizerId uint, input model.UpdateWristbandInput) (*model.Wristband, error) {
	var band model.Wristband
	if err := s.db.First(&band, id).Error; err != nil {
		return nil, err
	}
	if band.OrganizerId != organizerId {
		return nil, ErrWrongEvent
	}
	if band.Status == model.WristbandRevoked {
		return nil, ErrRevoked
	}
	if err := copier.CopyWithOption(&band, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, err
	}
	if err := s.db.Save(&band).Error; err != nil {
		return nil, err
	}
	return &band, nil
}

// Revoke soft-deletes the wristband. Irreversible; the scan ledger is kept.
func (s *WristbandManager) Revoke(id, organizerId uint, reason string) error {
	var band model.Wristband
	if err := s.db.First(&band, id).Error; err != nil {
		return err
	}
	if band.OrganizerId != organizerId {
		return ErrWrongEvent
	}
	res := s.db.Model(&model.Wristband{}).
		Where("id = ? AND status <> ?", id, model.WristbandRevoked).
		Updates(map[string]any{
			"status":         model.WristbandRevoked,
			"revoked_reason": reason,
			"deleted_at":     s.now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRevoked
	}
	return nil
}

// eligibility derives the wristband's effective status at a point in time.
// It returns the status that should be persisted (lazy PENDING->ACTIVE and
// window-based EXPIRED transitions) and the rejection, if any.
func (s *WristbandManager) eligibility(band *model.Wristband, now time.Time) (string, error) {
	switch band.Status {
	case model.WristbandRevoked:
		return model.WristbandRevoked, ErrRevoked
	case model.WristbandExpired:
		return model.WristbandExpired, ErrExpired
	}
	if band.ValidUntil != nil && now.After(*band.ValidUntil) {
		return model.WristbandExpired, ErrExpired
	}
	if band.ValidFrom != nil && now.Before(*band.ValidFrom) {
		return model.WristbandPending, ErrNotYetValid
	}
	if band.MaxScans != nil && band.ScanCount >= *band.MaxScans {
		return model.WristbandActive, ErrScanLimitExceeded
	}
	return model.WristbandActive, nil
}

// Validate is the read-only eligibility check: no counter movement, no
// ledger entry.
func (s *WristbandManager) Validate(id, organizerId uint) (*model.Wristband, error) {
	var band model.Wristband
	if err := s.db.First(&band, id).Error; err != nil {
		return nil, err
	}
	if band.OrganizerId != organizerId {
		return nil, ErrWrongEvent
	}
	_, verdict := s.eligibility(&band, s.now())
	return &band, verdict
}

// Scan records one verification attempt. Every attempt, rejected or not,
// appends a ScanLog row: attempted misuse of a shared credential is as
// valuable in the ledger as legitimate entry.
func (s *WristbandManager) Scan(id uint, scannedBy, location, device string) (*model.Wristband, error) {
	var band model.Wristband
	var verdict error
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&band, id).Error; err != nil {
			return err
		}
		now := s.now()

		effective, elErr := s.eligibility(&band, now)
		if effective != band.Status {
			if err := tx.Model(&band).Update("status", effective).Error; err != nil {
				return err
			}
			band.Status = effective
		}
		verdict = elErr

		if verdict == nil {
			// Counted increment; the guard re-checks the limit so two
			// concurrent scans cannot both take the last slot.
			res := tx.Model(&model.Wristband{}).
				Where("id = ? AND status = ? AND (max_scans IS NULL OR scan_count < max_scans)",
					band.ID, model.WristbandActive).
				UpdateColumn("scan_count", gorm.Expr("scan_count + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				verdict = ErrScanLimitExceeded
			} else {
				band.ScanCount++
			}
		}

		entry := model.ScanLog{
			WristbandId: band.ID,
			ScannedBy:   scannedBy,
			Location:    location,
			Device:      device,
			Success:     verdict == nil,
			Reason:      ReasonMessage(verdict),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &band, verdict
}

// ScanByCode resolves a wristband public code from a decrypted credential.
func (s *WristbandManager) ScanByCode(publicCode, scannedBy, location, device string) (*model.Wristband, error) {
	band, err := s.byCode(publicCode)
	if err != nil {
		return nil, err
	}
	return s.Scan(band.ID, scannedBy, location, device)
}

// ValidateByCode is the dispatcher's entry; event ownership is already
// checked against the decrypted payload by then.
func (s *WristbandManager) ValidateByCode(publicCode string) (*model.Wristband, error) {
	band, err := s.byCode(publicCode)
	if err != nil {
		return nil, err
	}
	_, verdict := s.eligibility(band, s.now())
	return band, verdict
}

func (s *WristbandManager) byCode(publicCode string) (*model.Wristband, error) {
	var band model.Wristband
	if err := s.db.Where("public_code = ?", publicCode).First(&band).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnrecognizedCredential
		}
		return nil, err
	}
	return &band, nil
}

// ListScans pages through the wristband's ledger, newest first.
func (s *WristbandManager) ListScans(id, organizerId uint, limit, page *int) ([]model.ScanLog, int64, error) {
	var band model.Wristband
	if err := s.db.First(&band, id).Error; err != nil {
		return nil, 0, err
	}
	if band.OrganizerId != organizerId {
		return nil, 0, ErrWrongEvent
	}

	var logs []model.ScanLog
	var total int64
	q := s.db.Model(&model.ScanLog{}).Where("wristband_id = ?", id)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit != nil && *limit > 0 && page != nil && *page >= 1 {
		q = q.Limit(*limit).Offset(*limit * (*page - 1))
	}
	if err := q.Order("created_at desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// Credential regenerates the wristband's encrypted payload. Expiry follows
// the validity window when one is set, otherwise the long default.
func (s *WristbandManager) Credential(id, organizerId uint) (*model.Wristband, string, error) {
	var band model.Wristband
	if err := s.db.First(&band, id).Error; err != nil {
		return nil, "", err
	}
	if band.OrganizerId != organizerId {
		return nil, "", ErrWrongEvent
	}
	if band.Status == model.WristbandRevoked {
		return nil, "", ErrRevoked
	}
	expiresAt := s.now().Add(wristbandDefaultTTL)
	if band.ValidUntil != nil {
		expiresAt = *band.ValidUntil
	}
	anchor := band.CreatedAt
	if band.ValidFrom != nil {
		anchor = *band.ValidFrom
	}
	payload := credential.Build(credential.KindWristband, credential.Fields{
		CredentialId:    band.PublicCode,
		EventId:         band.EventId,
		OwnerId:         band.OrganizerId,
		IssuedContextId: band.ID,
		ValidAnchor:     anchor,
	}, expiresAt)
	enc, err := s.codec.Encrypt(payload)
	if err != nil {
		return nil, "", err
	}
	return &band, enc, nil
}
