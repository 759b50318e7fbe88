package options

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Rule attempts to coerce a raw value. It reports false when it does not apply.
type Rule func(raw string) (Value, bool)

// Policy is an ordered list of rules. The first rule that applies wins; when none
// does, the raw string is kept as Text.
type Policy []Rule

// DefaultPolicy checks boolean literals before numbers.
var DefaultPolicy = Policy{TrueLiteral, FalseLiteral, Numeric}

// Coerce applies the policy to raw.
func (p Policy) Coerce(raw string) Value {
	for _, rule := range p {
		if v, ok := rule(raw); ok {
			return v
		}
	}
	return Text(raw)
}

// Coerce applies DefaultPolicy to raw.
func Coerce(raw string) Value {
	return DefaultPolicy.Coerce(raw)
}

// TrueLiteral matches the empty string and the exact literal "true".
func TrueLiteral(raw string) (Value, bool) {
	if raw == "" || raw == "true" {
		return Bool(true), true
	}
	return Value{}, false
}

// FalseLiteral matches the exact literal "false".
func FalseLiteral(raw string) (Value, bool) {
	if raw == "false" {
		return Bool(false), true
	}
	return Value{}, false
}

var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// Numeric matches strings that are entirely a number: decimals with optional sign,
// fraction and exponent, 0x/0o/0b integers and (signed) Infinity. Surrounding
// whitespace is ignored. NaN never matches.
func Numeric(raw string) (Value, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{}, false
	}

	switch s {
	case "Infinity", "+Infinity":
		return Number(math.Inf(1)), true
	case "-Infinity":
		return Number(math.Inf(-1)), true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			digits := s[2:]
			if strings.ContainsAny(digits, "_+-") {
				return Value{}, false
			}
			n, ok := new(big.Int).SetString(digits, base)
			if !ok {
				return Value{}, false
			}
			f, _ := n.Float64()
			return Number(f), true
		}
	}

	if !decimalPattern.MatchString(s) {
		return Value{}, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeError(err) {
		return Value{}, false
	}
	if math.IsNaN(n) {
		return Value{}, false
	}
	return Number(n), true
}

// ParseFloat returns ±Inf with a range error for overflowing literals, which is
// still a number.
func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}
