package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Table statuses. A table is always in exactly one of these.
const (
	TableStatusIdle     = "idle"
	TableStatusOccupied = "occupied"
	TableStatusCleaning = "cleaning"
	TableStatusReserved = "reserved"
	TableStatusMerged   = "merged"
)

// MaxActivityLogs bounds the per-table audit trail; oldest entries drop off.
const MaxActivityLogs = 20

type Table struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	TableNumber        string          `json:"table_number" gorm:"type:varchar(50);not null"`
	Status             string          `json:"status" gorm:"type:varchar(20);not null;default:'idle'"`
	StartedAt          *time.Time      `json:"started_at"`
	ElapsedSec         int64           `json:"elapsed_sec" gorm:"not null;default:0"`
	CurrentSessionID   *string         `json:"current_session_id" gorm:"type:varchar(36)"`
	MergedWith         IDList          `json:"merged_with" gorm:"type:text"`
	MergedInto         *uint           `json:"merged_into"`
	ServiceRequestedAt *time.Time      `json:"service_requested_at"`
	ActivityLogs       ActivityLogList `json:"activity_logs" gorm:"type:text"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null"`
}

// ActivityLog is one entry of a table's local audit trail,
// most recent first.
type ActivityLog struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// IDList is an ordered set of table ids persisted as a JSON array.
type IDList []uint

func (l IDList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *IDList) Scan(value interface{}) error {
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
		return errors.New("unsupported type for IDList")
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

func (l IDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// ActivityLogList is persisted as a JSON array, newest entry first.
type ActivityLogList []ActivityLog

func (l ActivityLogList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ActivityLogList) Scan(value interface{}) error {
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
		return errors.New("unsupported type for ActivityLogList")
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

// AppendActivity prepends an entry and trims the trail to MaxActivityLogs.
func (t *Table) AppendActivity(id, message string, at time.Time) {
	entry := ActivityLog{ID: id, Message: message, Timestamp: at}
	logs := append(ActivityLogList{entry}, t.ActivityLogs...)
	if len(logs) > MaxActivityLogs {
		logs = logs[:MaxActivityLogs]
	}
	t.ActivityLogs = logs
}
