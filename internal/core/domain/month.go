package domain

import (
	"fmt"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
)

// Month is one of the twelve canonical Portuguese month names. It is the value
// stored at rest and sent on the wire, matching the SPA this backend serves.
type Month string

const (
	Janeiro   Month = "Janeiro"
	Fevereiro Month = "Fevereiro"
	Marco     Month = "Março"
	Abril     Month = "Abril"
	Maio      Month = "Maio"
	Junho     Month = "Junho"
	Julho     Month = "Julho"
	Agosto    Month = "Agosto"
	Setembro  Month = "Setembro"
	Outubro   Month = "Outubro"
	Novembro  Month = "Novembro"
	Dezembro  Month = "Dezembro"
)

// Months lists the canonical months in calendar order.
var Months = []Month{
	Janeiro, Fevereiro, Marco, Abril, Maio, Junho,
	Julho, Agosto, Setembro, Outubro, Novembro, Dezembro,
}

var monthOrdinals = func() map[Month]int {
	m := make(map[Month]int, len(Months))
	for i, name := range Months {
		m[name] = i + 1
	}
	return m
}()

// IsValid reports whether m is one of the canonical month names.
func (m Month) IsValid() bool {
	_, ok := monthOrdinals[m]
	return ok
}

// Ordinal returns the calendar position of the month (Janeiro = 1).
// Returns 0 for an unknown month.
func (m Month) Ordinal() int {
	return monthOrdinals[m]
}

// MonthFromOrdinal converts a 1-12 ordinal to its canonical name.
func MonthFromOrdinal(n int) (Month, error) {
	if n < 1 || n > 12 {
		return "", fmt.Errorf("%w: month ordinal %d out of range", apperrors.ErrValidation, n)
	}
	return Months[n-1], nil
}

// NormalizeMonth accepts either a canonical month name or a 1-12 ordinal-as-string
// form and returns the canonical name. Batch payloads may carry numeric months;
// out-of-range or unknown values are a validation error.
func NormalizeMonth(name string, ordinal int, hasOrdinal bool) (Month, error) {
	if hasOrdinal {
		return MonthFromOrdinal(ordinal)
	}
	m := Month(name)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: invalid month %q", apperrors.ErrValidation, name)
	}
	return m, nil
}
