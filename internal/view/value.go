package view

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindMap
	KindList
)

// Value is a decoded JSON value or the explicit absence of one.
type Value struct {
	kind Kind
	raw  interface{}
}

// Absent is the Value of a path that does not resolve.
var Absent = Value{kind: KindAbsent}

// Of wraps a decoded JSON value.
func Of(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Value{kind: KindNull}
	case string:
		return Value{kind: KindString, raw: x}
	case bool:
		return Value{kind: KindBool, raw: x}
	case float64, float32, int, int64, int32, json.Number:
		return Value{kind: KindNumber, raw: x}
	case map[string]interface{}:
		return Value{kind: KindMap, raw: x}
	case models.Resource:
		return Value{kind: KindMap, raw: map[string]interface{}(x)}
	case []interface{}:
		return Value{kind: KindList, raw: x}
	case []string:
		items := make([]interface{}, len(x))
		for i, s := range x {
			items[i] = s
		}
		return Value{kind: KindList, raw: items}
	}
	return Absent
}

// Missing reports whether the value is absent or null.
func (v Value) Missing() bool { return v.kind == KindAbsent || v.kind == KindNull }

// Raw returns the underlying decoded value; nil for absent and null.
func (v Value) Raw() interface{} { return v.raw }

// Map returns the value as a mapping.
func (v Value) Map() (map[string]interface{}, bool) {
	m, ok := v.raw.(map[string]interface{})
	return m, ok && v.kind == KindMap
}

// List returns the value as a sequence.
func (v Value) List() ([]interface{}, bool) {
	l, ok := v.raw.([]interface{})
	return l, ok && v.kind == KindList
}

// Bool returns the value as a boolean.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Text formats scalars for display. Containers format as compact JSON,
// absent and null as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.raw.(string)
	case KindBool:
		return strconv.FormatBool(v.raw.(bool))
	case KindNumber:
		switch n := v.raw.(type) {
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64)
		case float32:
			return strconv.FormatFloat(float64(n), 'f', -1, 32)
		case int:
			return strconv.Itoa(n)
		case int64:
			return strconv.FormatInt(n, 10)
		case int32:
			return strconv.FormatInt(int64(n), 10)
		case json.Number:
			return n.String()
		}
	case KindMap, KindList:
		b, err := json.Marshal(v.raw)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return ""
}

// Lookup resolves a dot-delimited path against a record. Numeric segments
// index into sequences. Any missing key, out-of-range index or scalar
// intermediate yields Absent. The empty path resolves to the record itself.
func Lookup(r models.Resource, path string) Value {
	if r == nil {
		return Absent
	}
	return lookupIn(map[string]interface{}(r), path)
}

func lookupIn(root map[string]interface{}, path string) Value {
	if path == "" {
		return Of(root)
	}
	var cur interface{} = root
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[seg]
			if !ok {
				return Absent
			}
			cur = next
		case models.Resource:
			next, ok := node[seg]
			if !ok {
				return Absent
			}
			cur = next
		case []interface{}:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return Absent
			}
			cur = node[i]
		default:
			return Absent
		}
	}
	return Of(cur)
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
