package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGDecodes(t *testing.T) {
	data, err := PNG(AttendURL("http://localhost:8080", "tok"), 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

func TestPNGRejectsEmpty(t *testing.T) {
	_, err := PNG("", 100)
	assert.Error(t, err)
}

func TestAttendURL(t *testing.T) {
	assert.Equal(t, "https://tpo.example/api/qr/abc/attend", AttendURL("https://tpo.example", "abc"))
}
