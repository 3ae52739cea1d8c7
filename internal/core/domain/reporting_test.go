package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

func monthTotals(m domain.Month, planned, actual float64) domain.MonthTotals {
	p := decimal.NewFromFloat(planned)
	a := decimal.NewFromFloat(actual)
	return domain.MonthTotals{Month: m, Planned: p, Actual: a, Variance: a.Sub(p)}
}

func TestComputeCriticalMonths(t *testing.T) {
	series := []domain.MonthTotals{
		monthTotals(domain.Janeiro, 1000, 1200),  // +200
		monthTotals(domain.Fevereiro, 1000, 950), // -50
		monthTotals(domain.Marco, 1000, 1005),    // +5
		monthTotals(domain.Abril, 1000, 700),     // -300
		monthTotals(domain.Maio, 0, 0),           // ignored
	}

	picks := domain.ComputeCriticalMonths(series)

	require.NotNil(t, picks.BiggestSaving)
	assert.Equal(t, domain.Janeiro, picks.BiggestSaving.Month)
	assert.True(t, picks.BiggestSaving.Variance.Equal(decimal.NewFromInt(200)))

	require.NotNil(t, picks.BiggestOverspend)
	assert.Equal(t, domain.Abril, picks.BiggestOverspend.Month)
	assert.True(t, picks.BiggestOverspend.Variance.Equal(decimal.NewFromInt(-300)))

	require.NotNil(t, picks.MostAccurate)
	assert.Equal(t, domain.Marco, picks.MostAccurate.Month)
}

func TestComputeCriticalMonths_EarlierMonthWinsTies(t *testing.T) {
	series := []domain.MonthTotals{
		monthTotals(domain.Janeiro, 100, 150), // +50
		monthTotals(domain.Junho, 100, 150),   // +50 tie
	}

	picks := domain.ComputeCriticalMonths(series)

	require.NotNil(t, picks.BiggestSaving)
	assert.Equal(t, domain.Janeiro, picks.BiggestSaving.Month)
}

func TestComputeCriticalMonths_PicksMayCoincide(t *testing.T) {
	series := []domain.MonthTotals{
		monthTotals(domain.Janeiro, 100, 160), // the only nonzero month
	}

	picks := domain.ComputeCriticalMonths(series)

	require.NotNil(t, picks.BiggestSaving)
	require.NotNil(t, picks.MostAccurate)
	assert.Nil(t, picks.BiggestOverspend)
	assert.Equal(t, domain.Janeiro, picks.BiggestSaving.Month)
	assert.Equal(t, domain.Janeiro, picks.MostAccurate.Month)
}

func TestComputeCriticalMonths_EmptySeries(t *testing.T) {
	picks := domain.ComputeCriticalMonths(nil)
	assert.Nil(t, picks.BiggestSaving)
	assert.Nil(t, picks.BiggestOverspend)
	assert.Nil(t, picks.MostAccurate)
}

func TestComputeVariance(t *testing.T) {
	e := domain.BudgetEntry{
		Planned: decimal.RequireFromString("1000.00"),
		Actual:  decimal.RequireFromString("750.00"),
	}
	assert.True(t, e.ComputeVariance().Equal(decimal.RequireFromString("-250.00")))
}
