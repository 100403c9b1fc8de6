package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcuschin/poolhall-pos/models"
)

var oneHundred = decimal.NewFromInt(100)

// FeeBreakdown is a receipt-ready charge for one table session. Amounts
// carry full precision; call Rounded before persisting or displaying.
type FeeBreakdown struct {
	Minutes    int64           `json:"minutes"`
	RatePerMin decimal.Decimal `json:"rate_per_min"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	ServiceFee decimal.Decimal `json:"service_fee"`
	Total      decimal.Decimal `json:"total"`
}

// Rounded returns the breakdown with every amount rounded to 2 decimal
// places. Rounding happens only here, at the edge, so intermediate math
// never compounds rounding error.
func (f FeeBreakdown) Rounded() FeeBreakdown {
	return FeeBreakdown{
		Minutes:    f.Minutes,
		RatePerMin: f.RatePerMin.Round(2),
		Subtotal:   f.Subtotal.Round(2),
		Discount:   f.Discount.Round(2),
		ServiceFee: f.ServiceFee.Round(2),
		Total:      f.Total.Round(2),
	}
}

// BillableSeconds returns the elapsed occupancy for fee purposes. A merge
// primary's elapsed_sec is already max-combined at merge time, so its own
// value is authoritative; merged secondaries are never billed directly.
// For a running session the live clock is consulted so the caller does not
// depend on the freshness of the last tick.
func BillableSeconds(table *models.Table, now time.Time) int64 {
	elapsed := table.ElapsedSec
	if table.Status == models.TableStatusOccupied && table.StartedAt != nil {
		live := int64(now.Sub(*table.StartedAt).Seconds())
		if live > elapsed {
			elapsed = live
		}
	}
	return elapsed
}

// ComputeFee turns a table's occupancy into a charge under the given rule.
// Active promotions discount the subtotal first; the service fee applies
// to the discounted amount. This ordering is fixed for receipt
// reproducibility.
func ComputeFee(table *models.Table, rule *models.PricingRule, promotions []models.Promotion,
	serviceFeePct decimal.Decimal, now time.Time) (FeeBreakdown, error) {

	seconds := BillableSeconds(table, now)
	// Partial minutes are billed for a running session.
	minutes := (seconds + 59) / 60

	sessionStart := now.Add(-time.Duration(seconds) * time.Second)
	if table.StartedAt != nil {
		sessionStart = *table.StartedAt
	}

	subtotal, err := ComputeCharge(rule, minutes, sessionStart)
	if err != nil {
		return FeeBreakdown{}, err
	}

	discounted := subtotal
	for _, p := range promotions {
		if !p.IsActiveAt(now) {
			continue
		}
		pct := p.Config.DiscountPct
		if !pct.IsPositive() {
			continue
		}
		discounted = discounted.Mul(oneHundred.Sub(pct)).Div(oneHundred)
	}
	discount := subtotal.Sub(discounted)

	serviceFee := decimal.Zero
	if serviceFeePct.IsPositive() {
		serviceFee = discounted.Mul(serviceFeePct).Div(oneHundred)
	}

	ratePerMin := decimal.Zero
	if minutes > 0 {
		ratePerMin = subtotal.DivRound(decimal.NewFromInt(minutes), 4)
	}

	return FeeBreakdown{
		Minutes:    minutes,
		RatePerMin: ratePerMin,
		Subtotal:   subtotal,
		Discount:   discount,
		ServiceFee: serviceFee,
		Total:      discounted.Add(serviceFee),
	}, nil
}
