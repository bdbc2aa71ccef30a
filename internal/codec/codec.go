package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/forgo/qrmenu/api/internal/model"
)

// DefaultMaxURLLength is the share link ceiling used when none is configured
const DefaultMaxURLLength = 2000

// Decode outcomes. Every decode failure matches ErrNoData and one cause.
var (
	ErrNoData    = errors.New("no menu data")
	ErrAbsent    = errors.New("payload absent")
	ErrMalformed = errors.New("payload malformed")
	ErrInvalid   = errors.New("menu invalid")
)

// ErrPayloadTooLarge is returned when the share link would exceed the URL ceiling
var ErrPayloadTooLarge = errors.New("menu data too large for QR code")

// Encode serializes the menu content to canonical JSON and encodes it as unpadded base64url.
// Store-assigned fields are never part of the payload.
func Encode(m *model.Menu) (string, error) {
	content := m.Content()
	raw, err := json.Marshal(&content)
	if err != nil {
		return "", fmt.Errorf("encoding menu: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode. The result is always a complete, valid menu or an error matching ErrNoData.
func Decode(payload string) (*model.Menu, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: %w", ErrNoData, ErrAbsent)
	}

	raw, err := decodeTransport(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrNoData, ErrMalformed, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var m model.Menu
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrNoData, ErrMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w: trailing data after menu", ErrNoData, ErrMalformed)
	}

	m = m.Content()
	if errs := m.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w: %s: %s", ErrNoData, ErrInvalid, errs[0].Field, errs[0].Message)
	}

	return &m, nil
}

// Reason names the decode failure cause for logs and metric labels
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAbsent):
		return "absent"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}

// decodeTransport accepts base64url and standard base64, padded or not.
// Query parsing turns a standard-alphabet '+' into a space, so spaces are read back as '+'.
func decodeTransport(payload string) ([]byte, error) {
	s := strings.ReplaceAll(payload, " ", "+")
	s = strings.TrimRight(s, "=")

	enc := base64.RawURLEncoding
	if strings.ContainsAny(s, "+/") {
		enc = base64.RawStdEncoding
	}
	return enc.DecodeString(s)
}

// Codec builds share links under a public origin
type Codec struct {
	Origin       string
	MaxURLLength int
}

// New creates a codec for the given origin; a non-positive ceiling uses DefaultMaxURLLength
func New(origin string, maxURLLength int) *Codec {
	if maxURLLength <= 0 {
		maxURLLength = DefaultMaxURLLength
	}
	return &Codec{
		Origin:       strings.TrimRight(origin, "/"),
		MaxURLLength: maxURLLength,
	}
}

// URL composes the share link for an already encoded payload
func (c *Codec) URL(payload string) string {
	return c.Origin + "/menu?data=" + payload
}

// StoredURL composes the display link for a persisted menu
func (c *Codec) StoredURL(id string) string {
	return c.Origin + "/menu/" + url.PathEscape(id)
}

// Link encodes the menu and returns its share link and payload.
// A link longer than MaxURLLength is an error; it is never truncated.
func (c *Codec) Link(m *model.Menu) (string, string, error) {
	payload, err := Encode(m)
	if err != nil {
		return "", "", err
	}

	link := c.URL(payload)
	if len(link) > c.maxURLLength() {
		return "", "", fmt.Errorf("%w: link is %d characters, limit %d", ErrPayloadTooLarge, len(link), c.maxURLLength())
	}
	return link, payload, nil
}

func (c *Codec) maxURLLength() int {
	if c.MaxURLLength <= 0 {
		return DefaultMaxURLLength
	}
	return c.MaxURLLength
}
