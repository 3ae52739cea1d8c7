package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

func TestMonthOrdinals(t *testing.T) {
	assert.Equal(t, 1, domain.Janeiro.Ordinal())
	assert.Equal(t, 3, domain.Marco.Ordinal())
	assert.Equal(t, 12, domain.Dezembro.Ordinal())
	assert.Equal(t, 0, domain.Month("January").Ordinal())
}

func TestMonthFromOrdinal(t *testing.T) {
	m, err := domain.MonthFromOrdinal(3)
	require.NoError(t, err)
	assert.Equal(t, domain.Marco, m)

	for _, n := range []int{0, 13, -1} {
		_, err := domain.MonthFromOrdinal(n)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		name       string
		monthName  string
		ordinal    int
		hasOrdinal bool
		want       domain.Month
		wantErr    bool
	}{
		{name: "canonical name", monthName: "Março", want: domain.Marco},
		{name: "ordinal", ordinal: 7, hasOrdinal: true, want: domain.Julho},
		{name: "english name rejected", monthName: "March", wantErr: true},
		{name: "lowercase rejected", monthName: "março", wantErr: true},
		{name: "ordinal out of range", ordinal: 13, hasOrdinal: true, wantErr: true},
		{name: "empty name rejected", monthName: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NormalizeMonth(tt.monthName, tt.ordinal, tt.hasOrdinal)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthsAreInCalendarOrder(t *testing.T) {
	require.Len(t, domain.Months, 12)
	for i, m := range domain.Months {
		assert.Equal(t, i+1, m.Ordinal())
		assert.True(t, m.IsValid())
	}
}
