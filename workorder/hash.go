package workorder

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// ReceiptHash computes the canonical SHA-256 hex digest of r: serialize
// with receipt_sha256 nulled, object keys sorted lexicographically at
// every nesting level, no insignificant whitespace. Calling this again on
// a receipt whose receipt_sha256 is already populated ignores the stored
// value and recomputes from the rest of the fields, so the result is
// stable whether or not the receipt has already been hashed.
func ReceiptHash(r Receipt) (string, error) {
	r.ReceiptSHA256 = nil
	raw, err := json.Marshal(r)
	if err != nil {
		return "", err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	canonical, err := canonicalize(generic)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// WithHash returns a copy of r with receipt_sha256 populated with its own
// canonical hash. Idempotent: hashing an already-hashed receipt yields
// the same digest, since ReceiptHash always nulls the field first.
func (r Receipt) WithHash() (Receipt, error) {
	h, err := ReceiptHash(r)
	if err != nil {
		return Receipt{}, err
	}
	r.ReceiptSHA256 = &h
	return r, nil
}

// canonicalize re-encodes a decoded JSON value (map[string]any,
// []any, or scalar) with object keys sorted at every nesting level and no
// insignificant whitespace.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			vb, err := canonicalize(val[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil
	case []any:
		buf := []byte{'['}
		for i, elem := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			eb, err := canonicalize(elem)
			if err != nil {
				return nil, err
			}
			buf = append(buf, eb...)
		}
		buf = append(buf, ']')
		return buf, nil
	default:
		return json.Marshal(val)
	}
}
