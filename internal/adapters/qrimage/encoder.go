// Package qrimage genera la imagen PNG del código QR de emergencia como
// data URL en base64, lista para incrustar en un <img> del frontend.
package qrimage

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type Encoder struct {
	size int
}

func New() *Encoder {
	return &Encoder{size: defaultSize}
}

// NewWithSize permite ajustar el lado del PNG en píxeles.
func NewWithSize(size int) *Encoder {
	if size <= 0 {
		size = defaultSize
	}
	return &Encoder{size: size}
}

// DataURL codifica el contenido con nivel de corrección medio, suficiente
// para escaneo en pantalla o impresión de carnet.
func (e *Encoder) DataURL(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("qrimage: empty content")
	}

	png, err := qrcode.Encode(content, qrcode.Medium, e.size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
