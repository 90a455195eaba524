package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	ErrMalformedCredential = errors.New("credential is malformed or cannot be decrypted")
	ErrChecksumMismatch    = errors.New("credential checksum mismatch")
	ErrCredentialExpired   = errors.New("credential has expired")
	ErrKindMismatch        = errors.New("credential kind does not match")
)

type Kind string

const (
	KindTicket    Kind = "T"
	KindWristband Kind = "W"
)

// Payload is the transient structure embedded in a QR image. It is never
// persisted; a reissued credential gets a freshly built payload.
type Payload struct {
	Kind            Kind   `json:"k"`
	CredentialId    string `json:"cid"`
	EventId         uint   `json:"eid"`
	OwnerId         uint   `json:"oid"`
	IssuedContextId uint   `json:"ctx"`
	TypeId          uint   `json:"tid"`
	ValidAnchor     int64  `json:"anc"`
	Checksum        string `json:"sum"`
	ExpiresAt       int64  `json:"exp"`
}

type Fields struct {
	CredentialId    string
	EventId         uint
	OwnerId         uint
	IssuedContextId uint
	TypeId          uint
	ValidAnchor     time.Time
}

// Build assembles a payload, computing the checksum over the canonical field
// order. The kind tag is the first canonical field, so a payload can never
// validate under the wrong kind.
func Build(kind Kind, f Fields, expiresAt time.Time) Payload {
	p := Payload{
		Kind:            kind,
		CredentialId:    f.CredentialId,
		EventId:         f.EventId,
		OwnerId:         f.OwnerId,
		IssuedContextId: f.IssuedContextId,
		TypeId:          f.TypeId,
		ValidAnchor:     f.ValidAnchor.UTC().Unix(),
		ExpiresAt:       expiresAt.UTC().Unix(),
	}
	p.Checksum = checksum(p)
	return p
}

func checksum(p Payload) string {
	canonical := fmt.Sprintf("%s|%s|%d|%d|%d|%d|%d",
		p.Kind, p.CredentialId, p.EventId, p.OwnerId, p.IssuedContextId, p.TypeId, p.ValidAnchor)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Validate re-checks the payload's trust fields. A checksum mismatch means
// tampering or corruption; expiry uses UTC.
func Validate(p Payload, now time.Time) error {
	if checksum(p) != p.Checksum {
		return ErrChecksumMismatch
	}
	if now.UTC().Unix() > p.ExpiresAt {
		return ErrCredentialExpired
	}
	return nil
}
