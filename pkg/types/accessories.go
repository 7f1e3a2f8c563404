package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// AccessoriesReturned records which loaned accessories came back with the vehicle.
type AccessoriesReturned struct {
	Items map[string]bool `json:"items,omitempty"`
	Notes string          `json:"notes,omitempty"`
}

// Missing lists the accessory names marked as not returned.
func (a AccessoriesReturned) Missing() []string {
	missing := make([]string, 0)
	for name, returned := range a.Items {
		if !returned {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Value marshals the accessories into JSON for the jsonb column.
func (a AccessoriesReturned) Value() (driver.Value, error) {
	buf, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes the jsonb column.
func (a *AccessoriesReturned) Scan(value interface{}) error {
	if value == nil {
		*a = AccessoriesReturned{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("accessories: unsupported scan type %T", value)
	}

	var result AccessoriesReturned
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return err
		}
	}
	*a = result
	return nil
}
