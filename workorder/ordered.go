package workorder

import (
	"encoding/json"
	"sort"
)

// orderedAny marshals a map[string]any with keys sorted lexicographically
// so that re-encoding the same value is always byte-identical, which the
// canonical receipt hash and BTreeMap-equivalent wire fixtures depend on.
type orderedAny map[string]any

// MarshalJSON implements deterministic key ordering.
func (o orderedAny) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(o))
	for k := range o {
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
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(o[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}
