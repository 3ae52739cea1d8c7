package domain

import "github.com/shopspring/decimal"

// MonthTotals is the aggregated planned/actual/variance for one month.
type MonthTotals struct {
	Month    Month           `json:"mes"`
	Planned  decimal.Decimal `json:"orcado"`
	Actual   decimal.Decimal `json:"realizado"`
	Variance decimal.Decimal `json:"dif"`
}

// GroupTotals is the aggregated variance for one cost-center group.
type GroupTotals struct {
	Group    string          `json:"grupo"`
	Variance decimal.Decimal `json:"desvio"`
}

// CostCenterTotals is the rollup for one cost center (category name).
type CostCenterTotals struct {
	Category string          `json:"categoria"`
	Planned  decimal.Decimal `json:"orcado"`
	Actual   decimal.Decimal `json:"realizado"`
	Variance decimal.Decimal `json:"dif"`
}

// ReportFilter narrows dashboard aggregations.
type ReportFilter struct {
	Year         int
	CategoryName string
	UF           string
	Group        string
}

// MonthPick names a month singled out by a critical-month rule.
type MonthPick struct {
	Month    Month           `json:"mes"`
	Variance decimal.Decimal `json:"desvio"`
}

// CriticalMonths are three independent picks over the monthly series; they are
// not mutually exclusive and may coincide.
type CriticalMonths struct {
	// BiggestSaving is the month with the largest positive variance.
	BiggestSaving *MonthPick `json:"mes_maior_economia"`
	// BiggestOverspend is the month with the most negative variance.
	BiggestOverspend *MonthPick `json:"mes_maior_estouro"`
	// MostAccurate is the month with the smallest absolute variance.
	MostAccurate *MonthPick `json:"mes_mais_preciso"`
}

// ComputeCriticalMonths applies the tie-break rules over a monthly series.
// Months with zero planned and zero actual are ignored. Earlier calendar
// months win ties, since the series is iterated in calendar order.
func ComputeCriticalMonths(series []MonthTotals) CriticalMonths {
	var picks CriticalMonths
	for _, m := range series {
		if m.Planned.IsZero() && m.Actual.IsZero() {
			continue
		}
		if m.Variance.IsPositive() {
			if picks.BiggestSaving == nil || m.Variance.GreaterThan(picks.BiggestSaving.Variance) {
				picks.BiggestSaving = &MonthPick{Month: m.Month, Variance: m.Variance}
			}
		}
		if m.Variance.IsNegative() {
			if picks.BiggestOverspend == nil || m.Variance.LessThan(picks.BiggestOverspend.Variance) {
				picks.BiggestOverspend = &MonthPick{Month: m.Month, Variance: m.Variance}
			}
		}
		if picks.MostAccurate == nil || m.Variance.Abs().LessThan(picks.MostAccurate.Variance.Abs()) {
			picks.MostAccurate = &MonthPick{Month: m.Month, Variance: m.Variance}
		}
	}
	return picks
}
