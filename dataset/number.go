package dataset

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric value which remembers whether it came from an integer
// or a floating point literal. Renderers format integers and floats
// differently ("7" vs "7.0"), so the distinction has to survive a round trip.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

func Int(v int64) Number { return Number{i: v} }

func Float(v float64) Number { return Number{f: v, isFloat: true} }

// ParseNumber interprets cell text as an integer first, then as a float.
// Surrounding white space is ignored. NaN and infinities are not numbers
// here: they cannot be represented in JSON.
func ParseNumber(s string) (Number, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return Number{}, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(v), true
	}
	if isIntegerLiteral(s) {
		// out of int64 range
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Number{}, false
		}
		return Float(v), true
	}
	if !isDecimalLiteral(s) {
		return Number{}, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}, false
	}
	return Float(v), true
}

func isIntegerLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// isDecimalLiteral rejects forms strconv accepts but tabular data never
// means as numbers: hex floats, underscores, "inf", "nan".
func isDecimalLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	digits := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
		default:
			return false
		}
	}
	return digits
}

func (n Number) IsFloat() bool { return n.isFloat }

func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// Int64 returns integer value, floats are truncated.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Compare returns -1, 0 or +1. Two integers are compared exactly.
func (n Number) Compare(o Number) int {
	if !n.isFloat && !o.isFloat {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	}
	a, b := n.Float64(), o.Float64()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String formats number the same way the reference JSON encoder of the
// renderer side does: shortest round trip digits, floats always carry a
// decimal point or an exponent, exponent form outside of [1e-4, 1e16).
func (n Number) String() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	f := n.f
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err != nil {
		// this should never happen
		panic(fmt.Sprintf("unexpected float format %q", e))
	}
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.ContainsAny(data, ".eE") {
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid number %s: %w", data, err)
		}
		*n = Float(v)
		return nil
	}
	if v, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*n = Int(v)
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*n = Float(v)
	return nil
}
