// utils/barcode.go
package utils

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// GenerateTokenBarcode renders a customer token serial as a Code128 barcode
// PNG, used on printed token receipts.
func GenerateTokenBarcode(serial string, width, height int) ([]byte, error) {
	if width <= 0 {
		width = 300
	}
	if height <= 0 {
		height = 80
	}

	code, err := code128.Encode(serial)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token serial: %w", err)
	}

	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to scale barcode: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("failed to encode barcode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
