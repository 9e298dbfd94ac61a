package movie

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	errInvalidUTF8  = errors.New("request body is not valid UTF-8")
	errTrailingData = errors.New("trailing characters after the JSON value")
)

// fieldError reports a well-formed body whose fields do not match the
// expected payload.
type fieldError struct {
	msg string
}

func (e *fieldError) Error() string {
	return e.msg
}

type createMoviePayload struct {
	Name    string
	Year    uint16
	WasGood bool
}

// parseCreateMoviePayload decodes a create request body. Keys are matched
// exactly, each of name, year and was_good must appear once with a non-null
// value, and unknown keys are ignored.
func parseCreateMoviePayload(body []byte) (createMoviePayload, error) {
	var p createMoviePayload
	if !utf8.Valid(body) {
		return p, errInvalidUTF8
	}

	fields, err := objectFields(body)
	if err != nil {
		return p, err
	}

	if err := decodeField(fields, "name", &p.Name); err != nil {
		return p, err
	}
	if err := decodeField(fields, "year", &p.Year); err != nil {
		return p, err
	}
	if err := decodeField(fields, "was_good", &p.WasGood); err != nil {
		return p, err
	}
	return p, nil
}

// objectFields splits a single top level JSON object into its raw values.
func objectFields(body []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &fieldError{msg: "invalid type: expected a JSON object"}
	}

	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		if _, dup := fields[key]; dup {
			return nil, &fieldError{msg: "duplicate field `" + key + "`"}
		}
		fields[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return fields, nil
}

func decodeField(fields map[string]json.RawMessage, key string, v any) error {
	raw, ok := fields[key]
	if !ok {
		return &fieldError{msg: "missing field `" + key + "`"}
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return &fieldError{msg: "invalid type: null for field `" + key + "`"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &fieldError{msg: fmt.Sprintf("invalid value for field `%s`: %v", key, err)}
		}
		return err
	}
	return nil
}
