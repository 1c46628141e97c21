package database

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// Offset converts a 1-based page into a row offset.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

// Paginate is a gorm scope applying Offset and a perPage row cap.
// Callers validate page and perPage; non-positive values are passed through
// as a first page.
func Paginate(page, perPage int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(Offset(page, perPage)).Limit(perPage)
	}
}

// IDList is "one id or many ids". It decodes from a JSON number, a numeric
// string, or an array of either, and keeps input order and duplicates.
type IDList []uint

// NewIDList normalizes a scalar or slice of ids into an IDList.
func NewIDList(v any) (IDList, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case uint:
		return IDList{t}, nil
	case int:
		if t < 0 {
			return nil, fmt.Errorf("negative id %d", t)
		}
		return IDList{uint(t)}, nil
	case []uint:
		return append(IDList(nil), t...), nil
	case []int:
		out := make(IDList, 0, len(t))
		for _, id := range t {
			if id < 0 {
				return nil, fmt.Errorf("negative id %d", id)
			}
			out = append(out, uint(id))
		}
		return out, nil
	case IDList:
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported id list type %T", v)
	}
}

func (l *IDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(IDList, 0, len(raw))
		for _, item := range raw {
			id, err := decodeID(item)
			if err != nil {
				return err
			}
			out = append(out, id)
		}
		*l = out
		return nil
	}

	id, err := decodeID(data)
	if err != nil {
		return err
	}
	*l = IDList{id}
	return nil
}

func decodeID(data []byte) (uint, error) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return 0, fmt.Errorf("invalid id %s", string(data))
	}
	v, err := n.Int64()
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid id %s", string(data))
	}
	return uint(v), nil
}

// Uints returns the ids as a plain slice.
func (l IDList) Uints() []uint {
	return []uint(l)
}
