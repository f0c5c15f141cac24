// Package qrcode renders registration URLs as PNG QR codes.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	goqrcode "github.com/skip2/go-qrcode"
)

var ErrEmptyPayload = errors.New("qr payload is empty")

type Options struct {
	Size       int // output width and height in pixels
	Margin     int // quiet zone, in modules
	Level      goqrcode.RecoveryLevel
	Foreground color.Color
	Background color.Color
}

func DefaultOptions() Options {
	return Options{
		Size:       200,
		Margin:     2,
		Level:      goqrcode.Medium,
		Foreground: color.Black,
		Background: color.White,
	}
}

type Encoder struct {
	opts Options
}

func NewEncoder(opts Options) *Encoder {
	return &Encoder{opts: opts}
}

// Encode returns a Size x Size PNG of payload. The output depends only on
// payload and the encoder options.
func (e *Encoder) Encode(payload string) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	q, err := goqrcode.New(payload, e.opts.Level)
	if err != nil {
		return nil, fmt.Errorf("goqrcode.New -> %w", err)
	}
	q.DisableBorder = true

	modules := q.Bitmap()
	side := len(modules) + 2*e.opts.Margin

	canvas := image.NewNRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			canvas.Set(x, y, e.opts.Background)
		}
	}
	for y, row := range modules {
		for x, dark := range row {
			if dark {
				canvas.Set(x+e.opts.Margin, y+e.opts.Margin, e.opts.Foreground)
			}
		}
	}

	scaled := imaging.Resize(canvas, e.opts.Size, e.opts.Size, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err = png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("png.Encode -> %w", err)
	}

	return buf.Bytes(), nil
}

// RegistrationURL appends the token query parameter to base.
func RegistrationURL(base, token string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}

	return base + sep + "token=" + url.QueryEscape(token)
}
