package httpx

import (
	"encoding/json"
	"errors"
	"io"
)

// DecodeJSON reads a single JSON object from body. Unknown fields are
// tolerated so form clients can send extra keys, but trailing content after
// the object is rejected.
func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}
