package runtime

import (
	"math/big"
	"strings"
)

// ParseBigInt parses a BigInt literal body (decimal or with a 0x/0o/0b
// prefix, no trailing `n`).
func ParseBigInt(s string) (*big.Int, bool) {
	return parseBigIntString(s)
}

// parseBigIntString parses a BigInt literal body (decimal or with a
// 0x/0o/0b prefix, no trailing `n`).
func parseBigIntString(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return big.NewInt(0), true
	}
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, s = 16, s[2:]
		case 'o', 'O':
			base, s = 8, s[2:]
		case 'b', 'B':
			base, s = 2, s[2:]
		}
	}
	i := new(big.Int)
	if _, ok := i.SetString(s, base); !ok {
		return nil, false
	}
	return i, true
}

// bigFromFloat converts an integral float to a big.Int.
func bigFromFloat(f float64) *big.Int {
	bf := new(big.Float).SetFloat64(f)
	i, _ := bf.Int(nil)
	return i
}
