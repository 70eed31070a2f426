package lexer

import "strconv"

// parseFloatLiteral converts a decimal numeric literal to its float64
// value. The scanner has already validated the digit structure, so the only
// failures left are overflow, which ParseFloat reports as ±Inf with an
// error; the infinity is the correct ECMA result and is kept.
func parseFloatLiteral(lit string) (float64, error) {
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return v, nil
		}
		return v, err
	}
	return v, nil
}
