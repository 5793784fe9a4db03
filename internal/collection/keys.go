// Package collection implements the ownership ledger: the key scheme that
// identifies one owned printing and the statistics computed over it.
package collection

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField is returned when a key component is empty.
	ErrMissingField = errors.New("missing key field")
	// ErrInvalidKey is returned when a stored key cannot be decoded.
	ErrInvalidKey = errors.New("invalid collection key")
)

const (
	variantStandard = "std"
	variantFoil     = "foil"
)

// MakeKey builds the storage key for one owned printing. The set must come
// from the card's own set attribute, never from whatever set the caller is
// currently viewing: cards from different sets can share a card number, and a
// view-derived set would collapse them into one entry.
func MakeKey(setCode, cardNumber string, foil bool) (string, error) {
	set := strings.ToUpper(strings.TrimSpace(setCode))
	number := strings.TrimSpace(cardNumber)
	if set == "" {
		return "", fmt.Errorf("%w: set code", ErrMissingField)
	}
	if number == "" {
		return "", fmt.Errorf("%w: card number", ErrMissingField)
	}

	variant := variantStandard
	if foil {
		variant = variantFoil
	}
	return fmt.Sprintf("%s_%s_%s", set, number, variant), nil
}

// ParseKey decodes a storage key back into its components. Card numbers may
// themselves contain underscores, so the set is taken from the front and the
// variant from the back, with everything between as the number.
func ParseKey(key string) (setCode, cardNumber string, foil bool, err error) {
	parts := strings.Split(key, "_")
	if len(parts) < 3 {
		return "", "", false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	setCode = parts[0]
	cardNumber = strings.Join(parts[1:len(parts)-1], "_")
	if setCode == "" || cardNumber == "" {
		return "", "", false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	switch parts[len(parts)-1] {
	case variantStandard:
		foil = false
	case variantFoil:
		foil = true
	default:
		return "", "", false, fmt.Errorf("%w: unknown variant in %q", ErrInvalidKey, key)
	}
	return setCode, cardNumber, foil, nil
}
