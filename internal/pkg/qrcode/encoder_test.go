package qrcode

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) (image.Image, string) {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)

	result, err := zxingqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)

	return img, result.GetText()
}

func TestEncode_RoundTrip(t *testing.T) {
	payload := RegistrationURL("http://localhost:3000/register", "ABCDEFGHJKMN")

	data, err := NewEncoder(DefaultOptions()).Encode(payload)
	require.NoError(t, err)

	img, text := decode(t, data)
	assert.Equal(t, "http://localhost:3000/register?token=ABCDEFGHJKMN", text)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestEncode_TwoTone(t *testing.T) {
	data, err := NewEncoder(DefaultOptions()).Encode("https://example.com/register?token=ZZZZZZZZZZZZ")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	// the quiet zone corner is background, every pixel is black or white
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			black := r == 0 && g == 0 && b == 0
			white := r == 0xffff && g == 0xffff && b == 0xffff
			require.True(t, black || white, "pixel (%d,%d) is neither black nor white", x, y)
		}
	}
}

func TestEncode_Deterministic(t *testing.T) {
	enc := NewEncoder(DefaultOptions())

	a, err := enc.Encode("http://localhost:3000/register?token=ABCDEFGHJKMN")
	require.NoError(t, err)
	b, err := enc.Encode("http://localhost:3000/register?token=ABCDEFGHJKMN")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEncode_Errors(t *testing.T) {
	enc := NewEncoder(DefaultOptions())

	_, err := enc.Encode("")
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = enc.Encode(strings.Repeat("x", 8000))
	assert.Error(t, err)
}

func TestRegistrationURL(t *testing.T) {
	assert.Equal(t, "http://h/register?token=ABC", RegistrationURL("http://h/register", "ABC"))
	assert.Equal(t, "http://h/register?lang=en&token=ABC", RegistrationURL("http://h/register?lang=en", "ABC"))
}
