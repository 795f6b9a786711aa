// Package cursor encodes keyset pagination positions as opaque, signed tokens.
//
// A token is base64url(createdAt "::" id "::" hex(HMAC-SHA256(createdAt "::" id))).
// The signature keeps clients from forging positions into ranges they never
// paged through.
package cursor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

const delimiter = "::"

var ErrInvalid = errors.New("invalid cursor")

// Position is the (createdAt, id) key of the last row a page returned.
type Position struct {
	CreatedAt time.Time
	ID        string
}

type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) Encode(p Position) string {
	payload := p.CreatedAt.UTC().Format(time.RFC3339Nano) + delimiter + p.ID
	signed := payload + delimiter + c.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(signed))
}

// Decode returns nil for an empty token, which means "first page".
func (c *Codec) Decode(token string) (*Position, error) {
	if token == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalid
	}

	parts := strings.Split(string(decoded), delimiter)
	if len(parts) != 3 {
		return nil, ErrInvalid
	}

	payload := parts[0] + delimiter + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(c.sign(payload))) {
		return nil, ErrInvalid
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, ErrInvalid
	}
	if parts[1] == "" {
		return nil, ErrInvalid
	}

	return &Position{CreatedAt: createdAt, ID: parts[1]}, nil
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
