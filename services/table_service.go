package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

// TableService owns the table state machine. Every mutating operation on
// a given table id is serialized through a per-table lock, and every
// observable change is broadcast to the hub before the call returns.
//
// Timing invariant: for an occupied table, started_at is kept rewound so
// that elapsed_sec == floor(now - started_at). Merge adjusts started_at
// when it combines elapsed time, which keeps the tick recompute a pure
// function of started_at.
type TableService struct {
	DB    *gorm.DB
	Hub   *hub.Hub
	Clock utils.Clock
	locks *tableLocks
}

func NewTableService(db *gorm.DB, h *hub.Hub, clock utils.Clock) *TableService {
	return &TableService{
		DB:    db,
		Hub:   h,
		Clock: clock,
		locks: newTableLocks(),
	}
}

func (s *TableService) Get(id uint) (models.Table, error) {
	var table models.Table
	if err := s.DB.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Table{}, fmt.Errorf("%w: id %d", ErrTableNotFound, id)
		}
		return models.Table{}, &PersistenceError{Op: "read table", Err: err}
	}
	return table, nil
}

func (s *TableService) List() ([]models.Table, error) {
	var tables []models.Table
	if err := s.DB.Order("id").Find(&tables).Error; err != nil {
		return nil, &PersistenceError{Op: "list tables", Err: err}
	}
	return tables, nil
}

// Start opens a session. Legal from idle, reserved or cleaning.
func (s *TableService) Start(id uint) (models.Table, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	table, err := s.Get(id)
	if err != nil {
		return models.Table{}, err
	}

	switch table.Status {
	case models.TableStatusIdle, models.TableStatusReserved, models.TableStatusCleaning:
	default:
		return models.Table{}, fmt.Errorf("%w: cannot start table %d in status %s",
			ErrInvalidTransition, id, table.Status)
	}

	now := s.Clock.Now()
	sessionID := uuid.NewString()
	table.Status = models.TableStatusOccupied
	table.StartedAt = &now
	table.ElapsedSec = 0
	table.CurrentSessionID = &sessionID
	table.AppendActivity(uuid.NewString(), "session started", now)

	if err := s.DB.Save(&table).Error; err != nil {
		return models.Table{}, &PersistenceError{Op: "start session", Err: err}
	}

	utils.InfoLogger.Printf("Table %d session %s started", table.ID, sessionID)
	s.Hub.Broadcast(hub.EventTableUpdate, table)
	return table, nil
}

// Stop closes the running session and freezes elapsed_sec at the final
// duration. It returns the closed session id so the caller can correlate
// the transaction it writes. No proration changes after this point.
func (s *TableService) Stop(id uint) (models.Table, string, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	table, err := s.Get(id)
	if err != nil {
		return models.Table{}, "", err
	}

	if table.Status != models.TableStatusOccupied {
		return models.Table{}, "", fmt.Errorf("%w: cannot stop table %d in status %s",
			ErrInvalidTransition, id, table.Status)
	}

	now := s.Clock.Now()
	if table.StartedAt != nil {
		if live := int64(now.Sub(*table.StartedAt).Seconds()); live > table.ElapsedSec {
			table.ElapsedSec = live
		}
	}

	sessionID := ""
	if table.CurrentSessionID != nil {
		sessionID = *table.CurrentSessionID
	}

	table.Status = models.TableStatusIdle
	table.StartedAt = nil
	table.CurrentSessionID = nil
	table.ServiceRequestedAt = nil
	table.AppendActivity(uuid.NewString(),
		fmt.Sprintf("session stopped after %ds", table.ElapsedSec), now)

	if err := s.DB.Save(&table).Error; err != nil {
		return models.Table{}, "", &PersistenceError{Op: "stop session", Err: err}
	}

	utils.InfoLogger.Printf("Table %d session %s stopped (%ds)", table.ID, sessionID, table.ElapsedSec)
	s.Hub.Broadcast(hub.EventTableUpdate, table)
	return table, sessionID, nil
}

// MarkCleaning flags a table as being cleaned. From occupied this is an
// implicit force-stop: the running session is discarded and recorded in
// the activity trail. Checkout paths should stop the session first; this
// is the walk-out backstop.
func (s *TableService) MarkCleaning(id uint) (models.Table, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	table, err := s.Get(id)
	if err != nil {
		return models.Table{}, err
	}

	if table.Status == models.TableStatusMerged {
		return models.Table{}, fmt.Errorf("%w: cannot clean merged table %d",
			ErrInvalidTransition, id)
	}

	now := s.Clock.Now()
	if table.Status == models.TableStatusOccupied {
		table.AppendActivity(uuid.NewString(), "session discarded for cleaning", now)
	}

	table.Status = models.TableStatusCleaning
	table.StartedAt = nil
	table.ElapsedSec = 0
	table.CurrentSessionID = nil
	table.ServiceRequestedAt = nil
	table.MergedWith = nil
	table.AppendActivity(uuid.NewString(), "marked for cleaning", now)

	if err := s.DB.Save(&table).Error; err != nil {
		return models.Table{}, &PersistenceError{Op: "mark cleaning", Err: err}
	}

	s.Hub.Broadcast(hub.EventTableUpdate, table)
	return table, nil
}

// ClearCleaning returns a cleaned table to idle.
func (s *TableService) ClearCleaning(id uint) (models.Table, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	table, err := s.Get(id)
	if err != nil {
		return models.Table{}, err
	}

	if table.Status != models.TableStatusCleaning {
		return models.Table{}, fmt.Errorf("%w: table %d is not being cleaned",
			ErrInvalidTransition, id)
	}

	now := s.Clock.Now()
	table.Status = models.TableStatusIdle
	table.AppendActivity(uuid.NewString(), "cleaning finished", now)

	if err := s.DB.Save(&table).Error; err != nil {
		return models.Table{}, &PersistenceError{Op: "clear cleaning", Err: err}
	}

	s.Hub.Broadcast(hub.EventTableUpdate, table)
	return table, nil
}

// Reserve holds an idle table for an upcoming reservation.
func (s *TableService) Reserve(id uint) (models.Table, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	table, err := s.Get(id)
	if err != nil {
		return models.Table{}, err
	}

	if table.Status != models.TableStatusIdle {
		return models.Table{}, fmt.Errorf("%w: cannot reserve table %d in status %s",
			ErrInvalidTransition, id, table.Status)
	}

	now := s.Clock.Now()
	table.Status = models.TableStatusReserved
	table.AppendActivity(uuid.NewString(), "reserved", now)

	if err := s.DB.Save(&table).Error; err != nil {
		return models.Table{}, &PersistenceError{Op: "reserve table", Err: err}
	}

	s.Hub.Broadcast(hub.EventTableUpdate, table)
	return table, nil
}

// Unreserve releases a reserved table back to idle.
func (s *TableService) Unreserve(id uint) (models.Table, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	table, err := s.Get(id)
	if err != nil {
		return models.Table{}, err
	}

	if table.Status != models.TableStatusReserved {
		return models.Table{}, fmt.Errorf("%w: table %d is not reserved",
			ErrInvalidTransition, id)
	}

	now := s.Clock.Now()
	table.Status = models.TableStatusIdle
	table.AppendActivity(uuid.NewString(), "reservation released", now)

	if err := s.DB.Save(&table).Error; err != nil {
		return models.Table{}, &PersistenceError{Op: "unreserve table", Err: err}
	}

	s.Hub.Broadcast(hub.EventTableUpdate, table)
	return table, nil
}

// RequestService flags a table for staff assistance. Valid from any
// non-merged state; the status itself does not change.
func (s *TableService) RequestService(id uint) (models.Table, error) {
	return s.setServiceFlag(id, true)
}

// ResolveService clears the assistance flag.
func (s *TableService) ResolveService(id uint) (models.Table, error) {
	return s.setServiceFlag(id, false)
}

func (s *TableService) setServiceFlag(id uint, requested bool) (models.Table, error) {
	unlock := s.locks.acquire(id)
	defer unlock()

	table, err := s.Get(id)
	if err != nil {
		return models.Table{}, err
	}

	if table.Status == models.TableStatusMerged {
		return models.Table{}, fmt.Errorf("%w: table %d is merged",
			ErrInvalidTransition, id)
	}

	now := s.Clock.Now()
	if requested {
		table.ServiceRequestedAt = &now
		table.AppendActivity(uuid.NewString(), "service requested", now)
	} else {
		table.ServiceRequestedAt = nil
		table.AppendActivity(uuid.NewString(), "service resolved", now)
	}

	if err := s.DB.Save(&table).Error; err != nil {
		return models.Table{}, &PersistenceError{Op: "update service flag", Err: err}
	}

	s.Hub.Broadcast(hub.EventTableUpdate, table)
	return table, nil
}

// Tick recomputes elapsed_sec for every occupied table. It is a pure
// recompute, not a transition, so nothing is broadcast. The conditional
// UPDATE re-checks status and session id at the moment of write, so a
// stop or merge that raced this cycle is never overwritten.
func (s *TableService) Tick() {
	now := s.Clock.Now()

	var tables []models.Table
	if err := s.DB.Where("status = ?", models.TableStatusOccupied).Find(&tables).Error; err != nil {
		utils.ErrorLogger.Printf("tick: listing occupied tables: %v", err)
		return
	}

	for i := range tables {
		t := &tables[i]
		if t.StartedAt == nil || t.CurrentSessionID == nil {
			continue
		}
		elapsed := int64(now.Sub(*t.StartedAt).Seconds())
		if elapsed <= t.ElapsedSec {
			continue
		}

		mu := s.locks.forTable(t.ID)
		mu.Lock()
		err := s.DB.Model(&models.Table{}).
			Where("id = ? AND status = ? AND current_session_id = ?",
				t.ID, models.TableStatusOccupied, *t.CurrentSessionID).
			Update("elapsed_sec", elapsed).Error
		mu.Unlock()

		if err != nil {
			utils.ErrorLogger.Printf("tick: updating table %d: %v", t.ID, err)
		}
	}
}

func rewoundStart(now time.Time, elapsedSec int64) time.Time {
	return now.Add(-time.Duration(elapsedSec) * time.Second)
}
