package picture

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	apperrors "github.com/leeforge/picture/errors"
)

// DescriptorKind is the unit of a srcset descriptor.
type DescriptorKind string

const (
	// KindDensity descriptors ("2x") are pixel density multipliers.
	KindDensity DescriptorKind = "x"
	// KindWidth descriptors ("400w") are absolute pixel widths.
	KindWidth DescriptorKind = "w"
)

// Descriptor is one parsed token of a densities string.
type Descriptor struct {
	Kind  DescriptorKind
	Value float64
}

// String formats the descriptor the way it appears in a srcset.
func (d Descriptor) String() string {
	return FormatDescriptorValue(d.Value) + string(d.Kind)
}

// ParseDescriptors parses a densities string such as "1x, 1.5x 400w".
// Tokens are separated by commas and/or whitespace; units are lowercase only.
// An empty string yields a single 1x descriptor.
func ParseDescriptors(s string) ([]Descriptor, error) {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(tokens) == 0 {
		return []Descriptor{{Kind: KindDensity, Value: 1}}, nil
	}

	descriptors := make([]Descriptor, 0, len(tokens))
	for _, token := range tokens {
		d, err := parseDescriptor(token)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

func parseDescriptor(token string) (Descriptor, error) {
	if len(token) < 2 {
		return Descriptor{}, invalidToken(token)
	}

	number, unit := token[:len(token)-1], DescriptorKind(token[len(token)-1:])
	if !isDecimal(number) {
		return Descriptor{}, invalidToken(token)
	}

	switch unit {
	case KindDensity:
		v, err := strconv.ParseFloat(number, 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) {
			return Descriptor{}, invalidToken(token)
		}
		return Descriptor{Kind: KindDensity, Value: v}, nil
	case KindWidth:
		v, err := strconv.Atoi(number)
		if err != nil || v <= 0 {
			return Descriptor{}, invalidToken(token)
		}
		return Descriptor{Kind: KindWidth, Value: float64(v)}, nil
	default:
		return Descriptor{}, invalidToken(token)
	}
}

// isDecimal accepts plain decimal numbers ("2", "1.5", ".5") and nothing
// that strconv would additionally understand (signs, exponents, hex, "inf").
func isDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

func invalidToken(token string) error {
	return apperrors.NewInvalidConfiguration("densities", token,
		"descriptor must be a positive number followed by x or a positive integer followed by w")
}
