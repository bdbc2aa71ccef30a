// Package publish renders share links as downloadable QR codes.
package publish

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the QR code edge length in pixels
const DefaultSize = 256

// ErrEmptyContent is returned when there is no link to encode
var ErrEmptyContent = errors.New("qr content is empty")

var whitespaceRun = regexp.MustCompile(`\s+`)

// QRCode renders content as a PNG QR code with medium error recovery.
// A non-positive size uses DefaultSize.
func QRCode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("rendering qr code: %w", err)
	}
	return png, nil
}

// Filename names the downloaded QR image after the menu title
func Filename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "menu-qr.png"
	}
	return whitespaceRun.ReplaceAllString(title, "-") + "-menu-qr.png"
}
