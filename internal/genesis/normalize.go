package genesis

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"
)

// amountFields hold monetary quantities, which genesis expects as strings.
var amountFields = map[string]struct{}{
	"amount":                {},
	"LP_units":              {},
	"synth_units":           {},
	"balance_asset":         {},
	"balance_rune":          {},
	"pending_inbound_asset": {},
	"pending_inbound_rune":  {},
	"reserve":               {},
}

// NormalizeStringField flattens a possibly double-encoded JSON string field
// to a plain scalar string. Strings that are not JSON are returned as is;
// values that decode to an object or array, and non-string values, become "".
func NormalizeStringField(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	decoded, err := decodeValue([]byte(s))
	if err != nil {
		return s
	}
	if text, ok := scalarText(decoded); ok {
		return text
	}
	return ""
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, json.Number, float64:
		return true
	}
	return false
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

// Destringify replaces, throughout v, every string holding an encoded JSON
// scalar with that scalar. Only strings that look encoded (leading '[', '{'
// or '"') are considered and strings encoding an object or array are kept.
// It is a single pass: a string encoded twice is unwrapped once.
func Destringify(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = Destringify(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = Destringify(child)
		}
		return t
	case string:
		trimmed := strings.TrimLeft(t, " \t\r\n")
		if trimmed == "" || !strings.ContainsRune(`[{"`, rune(trimmed[0])) {
			return t
		}
		decoded, err := decodeValue([]byte(t))
		if err != nil || !isScalar(decoded) {
			return t
		}
		return decoded
	default:
		return v
	}
}

// StringifyAmounts rewrites numeric values stored under amount-like keys to
// their canonical decimal string.
func StringifyAmounts(v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if _, ok := amountFields[k]; ok {
				if text, ok := CanonicalAmount(child); ok {
					t[k] = text
					continue
				}
			}
			StringifyAmounts(child)
		}
	case []any:
		for _, child := range t {
			StringifyAmounts(child)
		}
	}
}

// CanonicalAmount renders a numeric value as a decimal string. Integral
// values render without a fractional part, so 5.0 becomes "5". The second
// result is false when v is not a number.
func CanonicalAmount(v any) (string, bool) {
	switch t := v.(type) {
	case json.Number:
		return canonicalNumber(string(t)), true
	case float64:
		return canonicalNumber(strconv.FormatFloat(t, 'g', -1, 64)), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}

// maxAmountExponent bounds the exponents expanded into integer digits.
const maxAmountExponent = 100

func canonicalNumber(literal string) string {
	if !strings.ContainsAny(literal, ".eE") {
		return literal
	}
	if i := strings.IndexAny(literal, "eE"); i >= 0 {
		exp, err := strconv.Atoi(literal[i+1:])
		if err != nil || exp > maxAmountExponent || exp < -maxAmountExponent {
			return literal
		}
	}
	f, _, err := big.ParseFloat(literal, 10, 256, big.ToNearestEven)
	if err != nil {
		return literal
	}
	if f.IsInt() {
		i, _ := f.Int(nil)
		return i.String()
	}
	f64, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return literal
	}
	return strconv.FormatFloat(f64, 'f', -1, 64)
}
