package service

import (
	"time"

	"vbtix/credential"
	"vbtix/model"

	"gorm.io/gorm"
)

// ScanPublisher fans a processed scan out to live observers (the websocket
// feed). Publishing is best-effort; a failure never affects the scan result.
type ScanPublisher interface {
	PublishScan(eventId uint, result ScanResult)
}

type ScanResult struct {
	Kind      string     `json:"kind"`
	Code      string     `json:"code"`
	EventId   uint       `json:"eventId"`
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	ScanCount *int       `json:"scanCount,omitempty"`
	MaxScans  *int       `json:"maxScans,omitempty"`
	ScannedAt time.Time  `json:"scannedAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

// ScanDispatcher is the single entry point for venue scanning: it turns an
// opaque scanned string into a classified credential and routes it to the
// owning manager.
type ScanDispatcher struct {
	db        *gorm.DB
	codec     *credential.Codec
	tickets   *TicketLifecycle
	bands     *WristbandManager
	publisher ScanPublisher
	now       func() time.Time
}

func NewScanDispatcher(db *gorm.DB, codec *credential.Codec, tickets *TicketLifecycle, bands *WristbandManager) *ScanDispatcher {
	return &ScanDispatcher{db: db, codec: codec, tickets: tickets, bands: bands, now: time.Now}
}

// SetPublisher attaches the optional live feed.
func (s *ScanDispatcher) SetPublisher(p ScanPublisher) { s.publisher = p }

// Resolve decrypts the scanned string and classifies it by the kind tag that
// is the first canonical payload field. Classification is O(1); an unknown
// tag is its own error rather than a silent misread.
func (s *ScanDispatcher) Resolve(raw string) (credential.Payload, error) {
	payload, err := s.codec.Decrypt(raw)
	if err != nil {
		return payload, err
	}
	switch payload.Kind {
	case credential.KindTicket, credential.KindWristband:
		return payload, nil
	default:
		return payload, ErrUnrecognizedCredential
	}
}

// Process resolves the kind, verifies the credential's trust fields and
// event ownership, then routes: tickets to check-in, wristbands to scan or
// the read-only validate depending on the requested action.
func (s *ScanDispatcher) Process(raw string, claim model.TokenClaim, input model.ScanInput) (*ScanResult, error) {
	payload, err := s.Resolve(raw)
	if err != nil {
		return nil, err
	}
	if err := credential.Validate(payload, s.now()); err != nil {
		return nil, err
	}

	var event model.Event
	if err := s.db.First(&event, payload.EventId).Error; err != nil {
		return nil, err
	}
	if event.OrganizerId != claim.OrganizerId {
		return nil, ErrWrongEvent
	}

	result := &ScanResult{
		Code:      payload.CredentialId,
		EventId:   payload.EventId,
		ScannedAt: s.now(),
	}

	var verdict error
	switch payload.Kind {
	case credential.KindTicket:
		result.Kind = "ticket"
		if input.Action == model.ScanActionValidate {
			// The read-only validate action exists for reusable
			// credentials; a single-use ticket must not be consumed by it.
			verdict = credential.ErrKindMismatch
			break
		}
		var ticket *model.Ticket
		ticket, verdict = s.tickets.CheckInByCode(payload.CredentialId)
		if ticket != nil {
			result.UsedAt = ticket.CheckedInAt
		}
	case credential.KindWristband:
		result.Kind = "wristband"
		var band *model.Wristband
		if input.Action == model.ScanActionValidate {
			band, verdict = s.bands.ValidateByCode(payload.CredentialId)
		} else {
			band, verdict = s.bands.ScanByCode(payload.CredentialId, claim.Email, input.Location, input.Device)
		}
		if band != nil {
			result.ScanCount = &band.ScanCount
			result.MaxScans = band.MaxScans
		}
	}

	if verdict != nil && !IsDomainError(verdict) {
		return nil, verdict
	}
	result.Success = verdict == nil
	result.Message = ReasonMessage(verdict)

	if s.publisher != nil {
		// Rejections are published too; the feed is an audit view, not a
		// success stream.
		s.publisher.PublishScan(result.EventId, *result)
	}
	if verdict != nil {
		return result, verdict
	}
	return result, nil
}
