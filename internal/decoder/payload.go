package decoder

import (
	"strconv"
	"strings"
)

// ExtractPayload returns the interior modules, skipping the outer ring, as a
// string of '1' (dark) and '0' (light). The symbol is read column by column:
// the leftmost interior column top to bottom first, then the next one.
func ExtractPayload(g *ModuleGrid) string {
	n := g.Size()
	if n < 3 {
		return ""
	}
	var b strings.Builder
	b.Grow((n - 2) * (n - 2))
	for col := 1; col < n-1; col++ {
		for row := 1; row < n-1; row++ {
			if g.Dark(row, col) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	}
	return b.String()
}

// DecodeNumeric turns a bit string into digits. Every full 10-bit group is
// written zero-padded to two digits; values of 100 and above keep all their
// digits. If four or more bits are left, the next four are written as a
// single unpadded value. Anything shorter is dropped.
func DecodeNumeric(bits string) string {
	var b strings.Builder
	i := 0
	for ; i+10 <= len(bits); i += 10 {
		v := parseBits(bits[i : i+10])
		if v < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.Itoa(v))
	}
	if i+4 <= len(bits) {
		b.WriteString(strconv.Itoa(parseBits(bits[i : i+4])))
	}
	return b.String()
}

// parseBits reads s as an unsigned big-endian binary number. Any byte other
// than '1' counts as zero.
func parseBits(s string) int {
	v := 0
	for i := range len(s) {
		v <<= 1
		if s[i] == '1' {
			v |= 1
		}
	}
	return v
}
