package picture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leeforge/picture/errors"
)

func TestParseDescriptors(t *testing.T) {
	tests := []struct {
		input string
		want  []Descriptor
	}{
		{"", []Descriptor{{KindDensity, 1}}},
		{"  ,  ", []Descriptor{{KindDensity, 1}}},
		{"1x, 1.35354x, 1.9999x, 10x", []Descriptor{{KindDensity, 1}, {KindDensity, 1.35354}, {KindDensity, 1.9999}, {KindDensity, 10}}},
		{"200w, 400w, 0.5x", []Descriptor{{KindWidth, 200}, {KindWidth, 400}, {KindDensity, 0.5}}},
		{" 1x ,2x  3x", []Descriptor{{KindDensity, 1}, {KindDensity, 2}, {KindDensity, 3}}},
		{".5x 2x 100w", []Descriptor{{KindDensity, 0.5}, {KindDensity, 2}, {KindWidth, 100}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDescriptors(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDescriptorsRejectsMalformedTokens(t *testing.T) {
	for _, input := range []string{"0x", "-1x", "1.5w", "0w", "abc", "2", "x", "1e3x", "1..5x", "1x, 2y", "+2x", "infx", "2X", "300W"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDescriptors(input)
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidConfiguration(err))
		})
	}
}

func TestFormatDescriptorValue(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1, "1"},
		{1.35354, "1.354"},
		{1.9999, "2"},
		{0.5, "0.5"},
		{0.615, "0.615"},
		{6.25, "6.25"},
		{100, "100"},
		{1234567, "1234567"},
		{0.0001, "0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDescriptorValue(tt.value), "value %v", tt.value)
	}
}

func TestDescriptorString(t *testing.T) {
	assert.Equal(t, "1.354x", Descriptor{KindDensity, 1.35354}.String())
	assert.Equal(t, "400w", Descriptor{KindWidth, 400}.String())
}
