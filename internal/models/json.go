package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONMap is a free-form JSON object column (app user props, run metadata).
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}
	if len(bytes) == 0 {
		*m = make(JSONMap)
		return nil
	}
	return json.Unmarshal(bytes, m)
}

func (JSONMap) GormDataType() string {
	return "json"
}

func (JSONMap) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

// RawJSON keeps arbitrary JSON (run input, output, error) as-is.
type RawJSON json.RawMessage

func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return string(r), nil
}

func (r *RawJSON) Scan(value any) error {
	if value == nil {
		*r = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported type for RawJSON: %T", value)
	}
	*r = append((*r)[:0], bytes...)
	return nil
}

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

func (RawJSON) GormDataType() string {
	return "json"
}

func (RawJSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

// StringList stores a list of strings as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
	if len(bytes) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

func (StringList) GormDataType() string {
	return "json"
}

func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

func scanBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}

func jsonColumnType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	case "mysql":
		return "JSON"
	case "clickhouse":
		return "String"
	default:
		return "TEXT"
	}
}
