package whatsapp

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrNoQR means no pairing is in progress.
var ErrNoQR = errors.New("no QR code pending")

const qrSize = 256

// RenderQR encodes a pairing code as a PNG image.
func RenderQR(code string) ([]byte, error) {
	img, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate QR: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image(qrSize)); err != nil {
		return nil, fmt.Errorf("encode QR png: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteQRFile saves a pairing code as a PNG file.
func WriteQRFile(code, path string) error {
	return qrcode.WriteFile(code, qrcode.Medium, qrSize, path)
}
