package utils

import (
	"bytes"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// QualityProfile controls resolution and error-correction only; it never
// changes the encoded content.
type QualityProfile struct {
	Size            int
	ErrorCorrection qrcode.RecoveryLevel
}

var (
	// ProfileScreen is for on-device display.
	ProfileScreen = QualityProfile{Size: 256, ErrorCorrection: qrcode.Medium}
	// ProfilePrint survives low-DPI printing and wear.
	ProfilePrint = QualityProfile{Size: 1024, ErrorCorrection: qrcode.High}
)

// RenderQR turns an encrypted credential into PNG bytes.
func RenderQR(content string, profile QualityProfile) ([]byte, error) {
	qr, err := qrcode.New(content, profile.ErrorCorrection)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	err = png.Encode(buf, qr.Image(profile.Size))
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
