// Package token implements the TBank request signature algorithm used both to
// verify inbound API calls and to sign outbound merchant webhooks.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
)

// Field is the request/notification field carrying the signature.
const Field = "Token"

// passwordField is injected into the signed set before hashing.
const passwordField = "Password"

// Sign computes the signature over params:
// scalar values only (composites and any existing Token are dropped), the
// terminal password added under "Password", keys sorted byte-wise ascending,
// values concatenated without separators, SHA-256, lowercase hex.
//
// The algorithm must stay bit-for-bit compatible with the real gateway, so
// value stringification follows the counterpart's rules: booleans render as
// true/false, numbers in their shortest decimal form.
func Sign(params map[string]any, password string) string {
	values := make(map[string]string, len(params)+1)
	for key, value := range params {
		if key == Field {
			continue
		}
		if s, ok := stringify(value); ok {
			values[key] = s
		}
	}
	values[passwordField] = password

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, key := range keys {
		h.Write([]byte(values[key]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Verify recomputes the signature over params (excluding the Token field) and
// compares it against the supplied Token. A missing or non-string Token fails.
func Verify(params map[string]any, password string) bool {
	received, ok := params[Field].(string)
	if !ok || received == "" {
		return false
	}
	return received == Sign(params, password)
}

// stringify renders a scalar value the way the gateway does. Composite values
// (arrays, objects) report ok=false and are excluded from the signature.
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}
