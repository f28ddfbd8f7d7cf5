package loader

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/oakwood-commons/kvi/internal/value"
)

func jwtParts(input string) []string {
	input = strings.TrimSpace(strings.TrimPrefix(input, "Bearer "))
	return strings.Split(input, ".")
}

// IsJWT reports whether input is three base64url parts whose first two decode
// to JSON objects. A leading "Bearer " is ignored.
func IsJWT(input string) bool {
	parts := jwtParts(input)
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	for _, part := range parts[:2] {
		if _, err := decodeJWTSegment(part); err != nil {
			return false
		}
	}
	_, err := base64.RawURLEncoding.DecodeString(parts[2])
	return err == nil
}

// DecodeJWT splits a token into a header, payload, signature mapping. Claim
// order is kept; the signature stays base64url encoded.
func DecodeJWT(input string) (value.Value, error) {
	parts := jwtParts(input)
	if len(parts) != 3 {
		return value.Value{}, fmt.Errorf("invalid JWT: expected 3 parts, got %d", len(parts))
	}
	header, err := decodeJWTSegment(parts[0])
	if err != nil {
		return value.Value{}, fmt.Errorf("invalid JWT header: %w", err)
	}
	payload, err := decodeJWTSegment(parts[1])
	if err != nil {
		return value.Value{}, fmt.Errorf("invalid JWT payload: %w", err)
	}
	return value.Mapping(
		value.E("header", header),
		value.E("payload", payload),
		value.E("signature", value.String(parts[2])),
	), nil
}

func decodeJWTSegment(part string) (value.Value, error) {
	raw, err := base64.RawURLEncoding.DecodeString(part)
	if err != nil {
		return value.Value{}, err
	}
	v, err := value.DecodeJSON(raw)
	if err != nil {
		return value.Value{}, err
	}
	if v.Kind() != value.KindMapping {
		return value.Value{}, fmt.Errorf("expected a JSON object, got %s", v.Kind())
	}
	return v, nil
}

func loadJWT(input string) ([]value.Value, error) {
	v, err := DecodeJWT(input)
	if err != nil {
		return nil, err
	}
	return []value.Value{v}, nil
}
