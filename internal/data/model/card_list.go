package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CardList stores an ordered list of card/hexagram identifiers as a JSON
// column. Order is preserved through the round trip.
type CardList []string

// Value implements driver.Valuer.
func (l CardList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *CardList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("card list: unsupported source type %T", src)
	}
	if len(b) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(b, l)
}
