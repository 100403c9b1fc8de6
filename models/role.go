package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Role struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Permissions PermissionList `json:"permissions" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null"`
}

// PermissionList is a JSON array of permission names. The wildcard "all"
// grants everything.
type PermissionList []string

func (l PermissionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *PermissionList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for PermissionList")
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

func (l PermissionList) Has(perm string) bool {
	for _, p := range l {
		if p == "all" || p == perm {
			return true
		}
	}
	return false
}
