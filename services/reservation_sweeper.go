package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

// HoldGracePeriod is how long past the reserved time a pending
// reservation is held before it expires.
const HoldGracePeriod = 30 * time.Minute

// ReservationSweeper expires pending reservations whose slot has passed.
type ReservationSweeper struct {
	DB        *gorm.DB
	Hub       *hub.Hub
	Clock     utils.Clock
	scheduler gocron.Scheduler
}

func NewReservationSweeper(db *gorm.DB, h *hub.Hub, clock utils.Clock) (*ReservationSweeper, error) {
	sw := &ReservationSweeper{DB: db, Hub: h, Clock: clock}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = s.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(sw.Sweep),
	)
	if err != nil {
		return nil, err
	}
	sw.scheduler = s
	return sw, nil
}

func (sw *ReservationSweeper) Start() {
	sw.scheduler.Start()
	utils.InfoLogger.Println("Reservation sweeper started (1m interval)")
}

func (sw *ReservationSweeper) Stop() {
	if err := sw.scheduler.Shutdown(); err != nil {
		utils.ErrorLogger.Printf("Reservation sweeper shutdown: %v", err)
	}
}

// Sweep marks pending reservations as expired once their slot plus the
// hold grace period has passed.
func (sw *ReservationSweeper) Sweep() {
	now := sw.Clock.Now()

	var pending []models.Reservation
	if err := sw.DB.Where("status = ?", "pending").Find(&pending).Error; err != nil {
		utils.ErrorLogger.Printf("sweeper: listing pending reservations: %v", err)
		return
	}

	for _, r := range pending {
		slot, err := time.ParseInLocation("2006-01-02 15:04", r.Date+" "+r.Time, now.Location())
		if err != nil {
			utils.ErrorLogger.Printf("sweeper: reservation %s has invalid slot %q %q", r.ID, r.Date, r.Time)
			continue
		}
		if now.Before(slot.Add(HoldGracePeriod)) {
			continue
		}

		if err := sw.DB.Model(&models.Reservation{}).
			Where("id = ? AND status = ?", r.ID, "pending").
			Update("status", "expired").Error; err != nil {
			utils.ErrorLogger.Printf("sweeper: expiring reservation %s: %v", r.ID, err)
			continue
		}
		r.Status = "expired"
		utils.InfoLogger.Printf("Reservation %s expired (%s %s)", r.ID, r.Date, r.Time)
		sw.Hub.Broadcast(hub.EventReservationUpdate, r)
	}
}
