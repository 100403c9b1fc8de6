package pricing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcuschin/poolhall-pos/models"
)

const minutesPerDay = 1440

// ValidationError reports a malformed or overlapping time-slot
// configuration. SlotIndexes are zero-based positions in the submitted
// slot list.
type ValidationError struct {
	SlotIndexes []int
	Reason      string
}

func (e *ValidationError) Error() string {
	if len(e.SlotIndexes) == 0 {
		return e.Reason
	}
	parts := make([]string, len(e.SlotIndexes))
	for i, idx := range e.SlotIndexes {
		parts[i] = strconv.Itoa(idx)
	}
	return fmt.Sprintf("%s (slot %s)", e.Reason, strings.Join(parts, ", "))
}

// ParseMinuteOfDay converts "HH:MM" to minutes since midnight.
func ParseMinuteOfDay(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

type parsedSlot struct {
	start, end int
	rate       decimal.Decimal
	index      int
}

func parseSlots(slots []models.TimeSlot) ([]parsedSlot, error) {
	parsed := make([]parsedSlot, 0, len(slots))
	for i, s := range slots {
		start, err := ParseMinuteOfDay(s.Start)
		if err != nil {
			return nil, &ValidationError{SlotIndexes: []int{i}, Reason: err.Error()}
		}
		end, err := ParseMinuteOfDay(s.End)
		if err != nil {
			return nil, &ValidationError{SlotIndexes: []int{i}, Reason: err.Error()}
		}
		if end <= start {
			return nil, &ValidationError{
				SlotIndexes: []int{i},
				Reason:      fmt.Sprintf("slot end %s must be after start %s", s.End, s.Start),
			}
		}
		parsed = append(parsed, parsedSlot{start: start, end: end, rate: s.RatePerMin, index: i})
	}
	return parsed, nil
}

// ValidateTimeSlots checks every slot parses, runs forward, and that no
// two slots overlap. Slots are half-open [start, end), so touching
// boundaries are fine.
func ValidateTimeSlots(slots []models.TimeSlot) error {
	parsed, err := parseSlots(slots)
	if err != nil {
		return err
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].start < parsed[j].start })
	for i := 1; i < len(parsed); i++ {
		prev, cur := parsed[i-1], parsed[i]
		if cur.start < prev.end {
			return &ValidationError{
				SlotIndexes: []int{prev.index, cur.index},
				Reason:      "time slots overlap",
			}
		}
	}
	return nil
}

// ValidateRule checks a pricing rule before it is persisted.
func ValidateRule(rule *models.PricingRule) error {
	switch rule.Mode {
	case models.PricingModeFlat, models.PricingModeHourly:
		return nil
	case models.PricingModeTimeSlot:
		return ValidateTimeSlots(rule.Config.TimeSlots)
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown pricing mode %q", rule.Mode)}
	}
}

// ComputeCharge maps a rule plus billable minutes to a charge. It is a
// pure function of its inputs. sessionStart anchors the occupancy window
// for time_slot rules and is ignored otherwise.
func ComputeCharge(rule *models.PricingRule, minutes int64, sessionStart time.Time) (decimal.Decimal, error) {
	switch rule.Mode {
	case models.PricingModeFlat:
		// A flat fee is not prorated, whether or not the minimum was reached.
		return rule.BaseRate, nil

	case models.PricingModeHourly:
		return hourlyCharge(rule, minutes), nil

	case models.PricingModeTimeSlot:
		return timeSlotCharge(rule, minutes, sessionStart)

	default:
		return decimal.Zero, &ValidationError{Reason: fmt.Sprintf("unknown pricing mode %q", rule.Mode)}
	}
}

func hourlyCharge(rule *models.PricingRule, minutes int64) decimal.Decimal {
	billable := minutes - int64(rule.GracePeriodMinutes)
	if billable < 0 {
		billable = 0
	}
	// The minimum-charge floor wins over the grace reduction.
	minCharge := int64(rule.MinChargeMinutes)
	if billable < minCharge {
		billable = minCharge
	}

	if rule.OvertimeRatePerMinute.IsPositive() && billable > minCharge {
		base := decimal.NewFromInt(minCharge).Mul(rule.BaseRate)
		overtime := decimal.NewFromInt(billable - minCharge).Mul(rule.OvertimeRatePerMinute)
		return base.Add(overtime)
	}
	return decimal.NewFromInt(billable).Mul(rule.BaseRate)
}

// timeSlotCharge walks the occupancy minute by minute, wrapping slot
// boundaries modulo 1440 so sessions spanning midnight price correctly.
// Minutes outside every configured slot fall back to the base rate.
func timeSlotCharge(rule *models.PricingRule, minutes int64, sessionStart time.Time) (decimal.Decimal, error) {
	slots, err := parseSlots(rule.Config.TimeSlots)
	if err != nil {
		return decimal.Zero, err
	}

	startMinute := sessionStart.Hour()*60 + sessionStart.Minute()
	total := decimal.Zero
	for i := int64(0); i < minutes; i++ {
		mod := (startMinute + int(i)) % minutesPerDay
		rate := rule.BaseRate
		for _, s := range slots {
			if mod >= s.start && mod < s.end {
				rate = s.rate
				break
			}
		}
		total = total.Add(rate)
	}
	return total, nil
}
