package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Asset is a reference to a file held by the remote object store.
// The URL and key come from the upload step; the core never builds them.
type Asset struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// Value stores the asset as JSON. A nil *Asset is written as NULL.
func (a Asset) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Asset) Scan(src any) error {
	return scanJSON(src, a)
}

// AssetKey returns the storage key of a, or "" when a is nil.
func AssetKey(a *Asset) string {
	if a == nil {
		return ""
	}
	return a.Key
}

func scanJSON(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

func valueJSON(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
