package resolve

import (
	"strconv"
	"strings"

	"github.com/teranos/corrfill/jsonv"
)

// Observer receives the outcome for every string leaf of a template.
// path is an RFC 6901 JSON Pointer to the leaf.
type Observer func(path string, o Outcome)

// Transformer rewrites templates against a single record.
type Transformer struct {
	Record  jsonv.Value
	Observe Observer
}

// Transform returns a new tree shaped like template in which every string
// leaf has been replaced by its resolved value. Keys, key order, array order
// and non-string scalars are kept. template is not modified.
func Transform(template, record jsonv.Value) jsonv.Value {
	return Transformer{Record: record}.Transform(template)
}

// Transform is the package-level Transform with the observer attached.
func (t Transformer) Transform(template jsonv.Value) jsonv.Value {
	return t.walk(template, "")
}

func (t Transformer) walk(node jsonv.Value, path string) jsonv.Value {
	switch node.Kind() {
	case jsonv.KindObject:
		out := jsonv.NewObject()
		node.Object().Each(func(key string, v jsonv.Value) bool {
			out.Set(key, t.walk(v, path+"/"+escapePointer(key)))
			return true
		})
		return jsonv.ObjectValue(out)

	case jsonv.KindArray:
		elems := node.Elems()
		out := make([]jsonv.Value, len(elems))
		for i, v := range elems {
			out[i] = t.walk(v, path+"/"+strconv.Itoa(i))
		}
		return jsonv.Array(out...)

	case jsonv.KindString:
		token, _ := node.AsString()
		o := Evaluate(token, t.Record)
		if t.Observe != nil {
			t.Observe(path, o)
		}
		return jsonv.String(o.Value)
	}

	return node
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(key string) string {
	return pointerEscaper.Replace(key)
}
