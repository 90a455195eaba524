package helper

import (
	"strings"

	"github.com/google/uuid"
)

// Public codes are the stable identifiers embedded in credentials; database
// ids never leave the service.

func NewOrderCode() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}

func NewTicketCode() string {
	return "TKT-" + strings.ToUpper(uuid.New().String()[:12])
}

func NewWristbandCode() string {
	return "WB-" + strings.ToUpper(uuid.New().String()[:12])
}
