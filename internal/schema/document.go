// Package schema builds the structured-data (JSON-LD) graph node describing a
// product, its offers and its variants.
package schema

import (
	"sort"
	"strconv"
)

// Document is one node of the structured-data graph. Nested nodes are
// Documents (or plain maps when decoded from JSON) and lists are
// []interface{}.
type Document map[string]interface{}

// Ref returns a node that only points at id.
func Ref(id string) Document {
	return Document{"@id": id}
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(d).(Document)
}

// ID returns the node's @id, or "".
func (d Document) ID() string {
	id, _ := d["@id"].(string)
	return id
}

// Types returns @type as a list, whether it is stored as a string or a list.
func (d Document) Types() []string {
	switch t := d["@type"].(type) {
	case string:
		return []string{t}
	case []string:
		return append([]string(nil), t...)
	case []interface{}:
		types := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				types = append(types, s)
			}
		}
		return types
	}
	return nil
}

// HasType reports whether typ is one of the node's types.
func (d Document) HasType(typ string) bool {
	for _, t := range d.Types() {
		if t == typ {
			return true
		}
	}
	return false
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case Document:
		c := make(Document, len(t))
		for k, val := range t {
			c[k] = cloneValue(val)
		}
		return c
	case map[string]interface{}:
		c := make(Document, len(t))
		for k, val := range t {
			c[k] = cloneValue(val)
		}
		return c
	case []interface{}:
		c := make([]interface{}, len(t))
		for i, val := range t {
			c[i] = cloneValue(val)
		}
		return c
	case []Document:
		c := make([]interface{}, len(t))
		for i, val := range t {
			c[i] = cloneValue(val)
		}
		return c
	case []map[string]interface{}:
		c := make([]interface{}, len(t))
		for i, val := range t {
			c[i] = cloneValue(val)
		}
		return c
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// asDocument views v as a node.
func asDocument(v interface{}) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]interface{}:
		return Document(t), true
	}
	return nil, false
}

// nodeList returns the nodes held under a list-valued property. A single
// node is wrapped into a one-element list and a mapping keyed by position
// ({"0": {...}, "1": {...}}) is flattened in key order. Entries that are not
// nodes are skipped.
func nodeList(v interface{}) []Document {
	var items []interface{}
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		items = t
	case []Document:
		nodes := make([]Document, 0, len(t))
		for _, n := range t {
			if n != nil {
				nodes = append(nodes, n)
			}
		}
		return nodes
	case []map[string]interface{}:
		for _, n := range t {
			items = append(items, n)
		}
	default:
		doc, ok := asDocument(v)
		if !ok {
			return nil
		}
		if isKeyedMapping(doc) {
			items = keyedValues(doc)
		} else {
			items = []interface{}{doc}
		}
	}

	nodes := make([]Document, 0, len(items))
	for _, item := range items {
		if doc, ok := asDocument(item); ok {
			nodes = append(nodes, doc)
		}
	}
	return nodes
}

// isKeyedMapping reports whether every key of m is a non-negative integer.
func isKeyedMapping(m Document) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if _, err := strconv.Atoi(k); err != nil {
			return false
		}
	}
	return true
}

func keyedValues(m Document) []interface{} {
	keys := make([]int, 0, len(m))
	for k := range m {
		i, _ := strconv.Atoi(k)
		keys = append(keys, i)
	}
	sort.Ints(keys)

	values := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		values = append(values, m[strconv.Itoa(k)])
	}
	return values
}

func toList(nodes []Document) []interface{} {
	list := make([]interface{}, len(nodes))
	for i, n := range nodes {
		list[i] = n
	}
	return list
}

// isEmpty mirrors how the store treats "no value": missing, nil, false, "",
// and empty lists or maps.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case []Document:
		return len(t) == 0
	case Document:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}
