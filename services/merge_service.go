package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

// MergeService folds secondary tables into a primary so a group bills as
// one unit, and splits them back apart. Both operations update every
// affected row inside one transaction; a partial merge is never
// observable.
type MergeService struct {
	DB    *gorm.DB
	Hub   *hub.Hub
	Clock utils.Clock
	locks *tableLocks
}

// NewMergeService shares the table service's per-id locks so merge,
// unmerge and single-table transitions serialize against each other.
func NewMergeService(db *gorm.DB, h *hub.Hub, clock utils.Clock, tables *TableService) *MergeService {
	return &MergeService{
		DB:    db,
		Hub:   h,
		Clock: clock,
		locks: tables.locks,
	}
}

type MergeResult struct {
	Primary     models.Table   `json:"primary"`
	Secondaries []models.Table `json:"secondaries"`
}

// Merge combines the secondaries into the primary. The primary keeps
// whichever ran longer: its own elapsed time or the secondaries' sum,
// since billing is computed off the primary after the merge. Secondary
// session fields are left frozen so an unmerge can restore them.
func (s *MergeService) Merge(primaryID uint, secondaryIDs []uint) (MergeResult, error) {
	if len(secondaryIDs) == 0 {
		return MergeResult{}, fmt.Errorf("%w: no secondary tables given", ErrInvalidMerge)
	}
	seen := map[uint]bool{primaryID: true}
	for _, id := range secondaryIDs {
		if seen[id] {
			return MergeResult{}, fmt.Errorf("%w: table %d listed twice", ErrInvalidMerge, id)
		}
		seen[id] = true
	}

	all := append([]uint{primaryID}, secondaryIDs...)
	unlock := s.locks.acquire(all...)
	defer unlock()

	now := s.Clock.Now()
	var result MergeResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		primary, err := loadTable(tx, primaryID)
		if err != nil {
			return err
		}
		if primary.Status == models.TableStatusMerged {
			return fmt.Errorf("%w: primary %d is itself merged", ErrInvalidMerge, primaryID)
		}

		var secondaries []models.Table
		var sum int64
		for _, id := range secondaryIDs {
			sec, err := loadTable(tx, id)
			if err != nil {
				return err
			}
			if len(sec.MergedWith) > 0 {
				return fmt.Errorf("%w: table %d is already a merge primary", ErrInvalidMerge, id)
			}
			if sec.Status == models.TableStatusMerged {
				return fmt.Errorf("%w: table %d is already merged", ErrInvalidMerge, id)
			}
			sum += sec.ElapsedSec
			secondaries = append(secondaries, sec)
		}

		combined := primary.ElapsedSec
		if sum > combined {
			combined = sum
		}

		primary.Status = models.TableStatusOccupied
		primary.ElapsedSec = combined
		// Rewind the anchor so the tick keeps accruing on top of the
		// combined total.
		start := rewoundStart(now, combined)
		primary.StartedAt = &start
		if primary.CurrentSessionID == nil {
			sid := uuid.NewString()
			primary.CurrentSessionID = &sid
		}
		primary.MergedWith = append(models.IDList{}, secondaryIDs...)
		primary.AppendActivity(uuid.NewString(),
			fmt.Sprintf("merged with %d table(s)", len(secondaryIDs)), now)

		if err := tx.Save(&primary).Error; err != nil {
			return &PersistenceError{Op: "merge primary", Err: err}
		}

		for i := range secondaries {
			sec := &secondaries[i]
			sec.Status = models.TableStatusMerged
			sec.MergedInto = &primaryID
			sec.AppendActivity(uuid.NewString(),
				fmt.Sprintf("merged into table %d", primaryID), now)
			if err := tx.Save(sec).Error; err != nil {
				return &PersistenceError{Op: "merge secondary", Err: err}
			}
		}

		result = MergeResult{Primary: primary, Secondaries: secondaries}
		return nil
	})
	if err != nil {
		return MergeResult{}, wrapTxErr("merge", err)
	}

	utils.InfoLogger.Printf("Tables %v merged into %d (elapsed=%ds)",
		secondaryIDs, primaryID, result.Primary.ElapsedSec)
	s.Hub.Broadcast(hub.EventTablesMerged, result)
	return result, nil
}

// Unmerge dissolves a merge group. Secondaries return to occupied with
// their frozen clocks resumed; the primary keeps its combined elapsed
// time. The combination is deliberately one-way.
func (s *MergeService) Unmerge(primaryID uint) (MergeResult, error) {
	// Snapshot the member set for lock acquisition; the transaction
	// re-validates it under the locks.
	current, err := s.peekMergedWith(primaryID)
	if err != nil {
		return MergeResult{}, err
	}

	all := append([]uint{primaryID}, current...)
	unlock := s.locks.acquire(all...)
	defer unlock()

	now := s.Clock.Now()
	var result MergeResult

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		primary, err := loadTable(tx, primaryID)
		if err != nil {
			return err
		}
		if len(primary.MergedWith) == 0 {
			return fmt.Errorf("%w: table %d", ErrNothingToUnmerge, primaryID)
		}

		var secondaries []models.Table
		if err := tx.Where("merged_into = ?", primaryID).Find(&secondaries).Error; err != nil {
			return &PersistenceError{Op: "load secondaries", Err: err}
		}

		primary.MergedWith = nil
		primary.Status = models.TableStatusOccupied
		primary.AppendActivity(uuid.NewString(), "merge dissolved", now)
		if err := tx.Save(&primary).Error; err != nil {
			return &PersistenceError{Op: "unmerge primary", Err: err}
		}

		for i := range secondaries {
			sec := &secondaries[i]
			sec.Status = models.TableStatusOccupied
			sec.MergedInto = nil
			// Resume the frozen clock from its pre-merge value.
			start := rewoundStart(now, sec.ElapsedSec)
			sec.StartedAt = &start
			if sec.CurrentSessionID == nil {
				sid := uuid.NewString()
				sec.CurrentSessionID = &sid
			}
			sec.AppendActivity(uuid.NewString(),
				fmt.Sprintf("split from table %d", primaryID), now)
			if err := tx.Save(sec).Error; err != nil {
				return &PersistenceError{Op: "unmerge secondary", Err: err}
			}
		}

		result = MergeResult{Primary: primary, Secondaries: secondaries}
		return nil
	})
	if err != nil {
		return MergeResult{}, wrapTxErr("unmerge", err)
	}

	utils.InfoLogger.Printf("Table %d unmerged, %d table(s) released",
		primaryID, len(result.Secondaries))
	s.Hub.Broadcast(hub.EventTableUnmerged, result)
	return result, nil
}

func (s *MergeService) peekMergedWith(primaryID uint) ([]uint, error) {
	table, err := loadTable(s.DB, primaryID)
	if err != nil {
		return nil, err
	}
	return table.MergedWith, nil
}

func loadTable(tx *gorm.DB, id uint) (models.Table, error) {
	var table models.Table
	if err := tx.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Table{}, fmt.Errorf("%w: id %d", ErrTableNotFound, id)
		}
		return models.Table{}, &PersistenceError{Op: "read table", Err: err}
	}
	return table, nil
}

// wrapTxErr keeps domain errors intact and tags everything else as a
// persistence failure.
func wrapTxErr(op string, err error) error {
	var pe *PersistenceError
	if errors.Is(err, ErrInvalidMerge) ||
		errors.Is(err, ErrNothingToUnmerge) ||
		errors.Is(err, ErrTableNotFound) ||
		errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
