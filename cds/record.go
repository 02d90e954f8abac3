package cds

import (
	"context"
	"os"
	"strings"

	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/jsonv"
)

// ParseRecord extracts the record from a CDS response body. The service
// returns an array and the first element is the record; a bare object is
// accepted too so saved records can be used directly.
func ParseRecord(body []byte) (jsonv.Value, error) {
	doc, err := jsonv.Parse(body)
	if err != nil {
		return jsonv.Null(), errors.WithHint(err, "the response is not JSON")
	}

	switch doc.Kind() {
	case jsonv.KindObject:
		return doc, nil
	case jsonv.KindArray:
		elems := doc.Elems()
		if len(elems) == 0 {
			return jsonv.Null(), errors.NewNotFoundError("no record returned (empty array)")
		}
		if elems[0].Kind() != jsonv.KindObject {
			return jsonv.Null(), errors.NewInvalidRequestError(
				"first record is %s, expected object", elems[0].Kind())
		}
		return elems[0], nil
	default:
		return jsonv.Null(), errors.NewInvalidRequestError(
			"record document is %s, expected array or object", doc.Kind())
	}
}

// FileSource serves a record saved to disk. The contract number is only
// used in messages.
type FileSource struct {
	Path string
}

// FetchRecord reads and parses the file.
func (f FileSource) FetchRecord(ctx context.Context, contractNumber string) (jsonv.Value, error) {
	if err := ctx.Err(); err != nil {
		return jsonv.Null(), err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return jsonv.Null(), errors.WithHint(
				errors.NewNotFoundError("record file %s does not exist", f.Path),
				"--record expects a JSON file holding a CDS response or a single record",
			)
		}
		return jsonv.Null(), errors.Wrapf(err, "failed to read record file %s", f.Path)
	}

	record, err := ParseRecord(data)
	if err != nil {
		label := f.Path
		if c := strings.TrimSpace(contractNumber); c != "" {
			label += " (contract " + c + ")"
		}
		return jsonv.Null(), errors.Wrapf(err, "record file %s", label)
	}
	return record, nil
}

var (
	_ Fetcher = (*Client)(nil)
	_ Fetcher = FileSource{}
)
