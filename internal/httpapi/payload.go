package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// fieldError reports a body field that could not be decoded. Its message is
// safe to return to the client.
type fieldError struct {
	field string
	want  string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("Invalid %s: expected %s", e.field, e.want)
}

// optionalID decodes an id sent as a number or a numeric string. null, ""
// and 0 leave it unset.
type optionalID struct {
	value *int64
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.value = nil
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &fieldError{field: "templateId", want: "a number"}
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return &fieldError{field: "templateId", want: "a number"}
	}
	if id != 0 {
		o.value = &id
	}
	return nil
}

// flexBool decodes true/false as well as the 0/1 integers SQLite-backed
// clients round-trip.
type flexBool struct {
	value *bool
}

func (f *flexBool) UnmarshalJSON(data []byte) error {
	f.value = nil
	var v bool
	switch string(bytes.TrimSpace(data)) {
	case "null":
		return nil
	case "true", "1", `"true"`, `"1"`:
		v = true
	case "false", "0", `"false"`, `"0"`:
		v = false
	default:
		return &fieldError{field: "is_active", want: "true, false, 0 or 1"}
	}
	f.value = &v
	return nil
}

// bindMessage turns a JSON decode error into a client-facing message.
func bindMessage(err error) string {
	var fe *fieldError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return fmt.Sprintf("Invalid %s: expected %s", te.Field, te.Type.String())
	}
	return "Invalid request body"
}
