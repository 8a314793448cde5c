package decoder

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/MeKo-Tech/matrixscan/internal/testutil"
)

func TestDecodeNumeric(t *testing.T) {
	tests := []struct {
		name string
		bits string
		want string
	}{
		{"two groups", "0000000001" + "0000000010", "0102"},
		{"trailing nibble", "0000000001" + "0001", "011"},
		{"short without nibble", "101", ""},
		{"nibble only", "1001", "9"},
		{"nibble then dropped bits", "0000000011" + "1111" + "101", "0315"},
		{"three digit group", "1111100111", "999"},
		{"max group", "1111111111", "1023"},
		{"nine bits", "111111111", "15"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeNumeric(tt.bits))
		})
	}
}

func TestExtractPayload(t *testing.T) {
	g := GridFromRows([][]bool{
		{true, false, true, false, true},
		{true, true, false, false, false},
		{true, false, false, true, true},
		{true, true, true, false, false},
		{true, true, true, true, true},
	})
	// Interior columns left to right, each read top to bottom.
	assert.Equal(t, "101"+"001"+"010", ExtractPayload(g))
}

func TestExtractPayloadTinyGrid(t *testing.T) {
	assert.Empty(t, ExtractPayload(NewModuleGrid(2)))
	assert.Equal(t, "0", ExtractPayload(NewModuleGrid(3)))
}

func TestDecodeNumericProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("10-bit groups decode to their padded values", prop.ForAll(
		func(values []int) bool {
			return DecodeNumeric(testutil.ChunkBits(values...)) == testutil.NumericString(values...)
		},
		gen.SliceOf(gen.IntRange(0, 1023)),
	))

	properties.Property("payload length is the interior area", prop.ForAll(
		func(n int) bool {
			return len(ExtractPayload(NewModuleGrid(n))) == (n-2)*(n-2)
		},
		gen.IntRange(3, 40),
	))

	properties.Property("fewer than four trailing bits never change the output", prop.ForAll(
		func(values []int, extra string) bool {
			bits := testutil.ChunkBits(values...)
			return DecodeNumeric(bits+extra) == DecodeNumeric(bits)
		},
		gen.SliceOf(gen.IntRange(0, 1023)),
		gen.OneConstOf("", "0", "1", "01", "110"),
	))

	properties.TestingRun(t)
}

func TestDecodeNumericIgnoresGroupBoundariesOfOutput(t *testing.T) {
	// 100 and above produce three digits, so output length is not a
	// multiple of two.
	got := DecodeNumeric(testutil.ChunkBits(5, 100, 7))
	assert.Equal(t, "0510007", got)
	assert.Equal(t, 7, len(got))
	assert.True(t, strings.HasPrefix(got, "05"))
}
