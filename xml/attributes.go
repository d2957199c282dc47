package xml

import (
	"bytes"
	"encoding/json"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// ============================================================================
// ATTRIBUTES
// ============================================================================
// An ordered string-to-string map: O(1) lookup by name, insertion order
// preserved for iteration, matching the data model's requirement that
// attribute iteration order reflect source order even though lookup is by
// name. Backed by gods' linkedhashmap rather than a hand-rolled
// slice-plus-map pair.

// Attributes holds one element's attribute list.
type Attributes struct {
	m *linkedhashmap.Map
}

func newAttributes() *Attributes {
	return &Attributes{m: linkedhashmap.New()}
}

// set inserts or overwrites name's value, appending name to the key order
// only the first time it is seen.
func (a *Attributes) set(name, value string) {
	a.m.Put(name, value)
}

// Has reports whether name was set.
func (a *Attributes) Has(name string) bool {
	_, ok := a.m.Get(name)
	return ok
}

// Get returns name's value and whether it was present.
func (a *Attributes) Get(name string) (string, bool) {
	v, ok := a.m.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Len returns the number of attributes.
func (a *Attributes) Len() int { return a.m.Size() }

// Keys returns attribute names in insertion (source) order.
func (a *Attributes) Keys() []string {
	raw := a.m.Keys()
	out := make([]string, len(raw))
	for i, k := range raw {
		out[i] = k.(string)
	}
	return out
}

// ForEach visits attributes in insertion order.
func (a *Attributes) ForEach(fn func(name, value string)) {
	a.m.Each(func(key, value interface{}) {
		fn(key.(string), value.(string))
	})
}

// MarshalJSON renders attributes as a JSON object with keys in insertion
// order, matching the tree's JSON projection contract of a stable key order.
func (a *Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var marshalErr error
	a.m.Each(func(key, value interface{}) {
		if marshalErr != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyBytes, err := json.Marshal(key.(string))
		if err != nil {
			marshalErr = err
			return
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(value.(string))
		if err != nil {
			marshalErr = err
			return
		}
		buf.Write(valBytes)
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
