// Package letter assembles the LetterData payload handed to the letter
// generator: a filled base document with document info, PDF inserts, option
// lists and UI values merged into its LetterData object.
package letter

import (
	"strings"

	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/jsonv"
)

// Member names used by the base document and the fragments.
const (
	LetterDataKey = "LetterData"
	DocInfoKey    = "DocInfo"
	PDFInsertKey  = "PDF_Insert"
	OptionListKey = "OptionList"
)

// Fragments are the partial documents merged into LetterData. A null
// fragment is skipped.
type Fragments struct {
	DocInfo    jsonv.Value // {"DocInfo": {...}}
	PDFInsert  jsonv.Value // {"PDF_Insert": [...]}
	OptionList jsonv.Value // {"OptionList": [...]}
	UI         jsonv.Value // every member lands in LetterData
}

// Merge returns a copy of base with the fragments merged into its
// LetterData object and every "/" in a string value doubled. base is not
// modified.
//
// DocInfo is replaced only when the fragment holds an object under
// "DocInfo"; PDF_Insert and OptionList only when the fragment holds an
// array. UI members overwrite in place or are appended.
func Merge(base jsonv.Value, f Fragments) (jsonv.Value, error) {
	if base.Kind() != jsonv.KindObject {
		return jsonv.Null(), errors.NewInvalidRequestError(
			"base document is %s, expected an object with a top-level %q object", base.Kind(), LetterDataKey)
	}
	existing, ok := base.Object().Get(LetterDataKey)
	if !ok || existing.Kind() != jsonv.KindObject {
		return jsonv.Null(), errors.WithHint(
			errors.NewInvalidRequestError("base document must contain a top-level %q object", LetterDataKey),
			"merge runs on the filled input.json; check that the template wraps its fields in LetterData",
		)
	}

	for _, frag := range []struct {
		name string
		v    jsonv.Value
	}{
		{"docInfo", f.DocInfo},
		{"pdf_insert", f.PDFInsert},
		{"optionList", f.OptionList},
		{"ui", f.UI},
	} {
		if !frag.v.IsNull() && frag.v.Kind() != jsonv.KindObject {
			return jsonv.Null(), errors.NewInvalidRequestError("%s fragment is %s, expected an object", frag.name, frag.v.Kind())
		}
	}

	doc := base.Clone()
	letterData, _ := doc.Object().Get(LetterDataKey)
	ld := letterData.Object()

	if v, ok := f.DocInfo.Object().Get(DocInfoKey); ok && v.Kind() == jsonv.KindObject {
		ld.Set(DocInfoKey, v.Clone())
	}
	if v, ok := f.PDFInsert.Object().Get(PDFInsertKey); ok && v.Kind() == jsonv.KindArray {
		ld.Set(PDFInsertKey, v.Clone())
	}
	if v, ok := f.OptionList.Object().Get(OptionListKey); ok && v.Kind() == jsonv.KindArray {
		ld.Set(OptionListKey, v.Clone())
	}
	f.UI.Object().Each(func(key string, v jsonv.Value) bool {
		ld.Set(key, v.Clone())
		return true
	})

	return EscapeSlashes(doc), nil
}

// EscapeSlashes returns a copy of v with every "/" in a string value
// replaced by "//". Member names are left alone.
func EscapeSlashes(v jsonv.Value) jsonv.Value {
	switch v.Kind() {
	case jsonv.KindString:
		s, _ := v.AsString()
		return jsonv.String(strings.ReplaceAll(s, "/", "//"))
	case jsonv.KindArray:
		elems := v.Elems()
		out := make([]jsonv.Value, len(elems))
		for i, e := range elems {
			out[i] = EscapeSlashes(e)
		}
		return jsonv.Array(out...)
	case jsonv.KindObject:
		obj := jsonv.NewObject()
		v.Object().Each(func(key string, member jsonv.Value) bool {
			obj.Set(key, EscapeSlashes(member))
			return true
		})
		return jsonv.ObjectValue(obj)
	default:
		return v
	}
}
