package ingest

import (
	"encoding/json"
	"errors"
)

// listWrappers are the top-level keys sources wrap their result arrays in.
var listWrappers = []string{"results", "jobs", "data", "items", "content", "postings"}

// decodeItems decodes a listing response body into raw payload items. It
// accepts a bare JSON array or an object wrapping the array under any of the
// usual keys, and tolerates any superset of fields per item.
func decodeItems(body []byte) ([]map[string]any, error) {
	var arr []map[string]any
	if err := json.Unmarshal(body, &arr); err == nil {
		return arr, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, errors.New("response is neither a JSON array nor object")
	}
	for _, k := range listWrappers {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &arr); err == nil {
			return arr, nil
		}
	}
	return nil, errors.New("no postings array found in response")
}
