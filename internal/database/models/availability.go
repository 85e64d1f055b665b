package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Availability is the storage-boundary form of every is_available column.
// Older import paths wrote 1, true or "1" for "available"; all three decode to
// true and anything else decodes to false. It is always written back as a bool.
type Availability bool

func ParseAvailability(value interface{}) Availability {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return Availability(v)
	case Availability:
		return v
	case int:
		return v == 1
	case int8:
		return v == 1
	case int16:
		return v == 1
	case int32:
		return v == 1
	case int64:
		return v == 1
	case uint8:
		return v == 1
	case float32:
		return v == 1
	case float64:
		return v == 1
	case string:
		return strings.TrimSpace(v) == "1"
	case []byte:
		return strings.TrimSpace(string(v)) == "1"
	default:
		return false
	}
}

func (a *Availability) Scan(value interface{}) error {
	*a = ParseAvailability(value)
	return nil
}

func (a Availability) Value() (driver.Value, error) {
	return bool(a), nil
}

func (a Availability) Bool() bool {
	return bool(a)
}

func (a Availability) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(a))
}

func (a *Availability) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = false
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid availability value %s: %w", string(data), err)
	}
	*a = ParseAvailability(raw)
	return nil
}
