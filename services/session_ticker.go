package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/marcuschin/poolhall-pos/utils"
)

// SessionTicker drives the 1 Hz elapsed-time recompute for occupied
// tables. All writes go through TableService.Tick, which serializes
// against the other mutation paths.
type SessionTicker struct {
	scheduler gocron.Scheduler
}

func NewSessionTicker(tables *TableService) (*SessionTicker, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(1*time.Second),
		gocron.NewTask(tables.Tick),
	)
	if err != nil {
		return nil, err
	}

	return &SessionTicker{scheduler: s}, nil
}

func (t *SessionTicker) Start() {
	t.scheduler.Start()
	utils.InfoLogger.Println("Session ticker started (1s interval)")
}

func (t *SessionTicker) Stop() {
	if err := t.scheduler.Shutdown(); err != nil {
		utils.ErrorLogger.Printf("Session ticker shutdown: %v", err)
	}
}
