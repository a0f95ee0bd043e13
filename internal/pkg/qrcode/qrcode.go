// Package qrcode renders attendance URLs and student codes as PNG images.
package qrcode

import (
	"fmt"

	goqr "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels of rendered codes
const DefaultSize = 300

// PNG encodes content as a PNG QR code of size pixels. A non-positive size
// uses DefaultSize.
func PNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	if size <= 0 {
		size = DefaultSize
	}

	qr, err := goqr.New(content, goqr.High)
	if err != nil {
		// long payloads may not fit at the high recovery level
		return goqr.Encode(content, goqr.Medium, size)
	}
	qr.DisableBorder = false
	return qr.PNG(size)
}

// AttendURL is the link a student scans to mark attendance
func AttendURL(baseURL, token string) string {
	return fmt.Sprintf("%s/api/qr/%s/attend", baseURL, token)
}
