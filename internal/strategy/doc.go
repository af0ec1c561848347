// Package strategy holds the simplified basic-strategy chart used for hints
// and for grading player decisions.
//
// The chart is three ordered rule tables (pairs, soft totals, hard totals)
// evaluated top to bottom; the first matching rule wins and Hit is the
// fallback. Surrender is checked before the chart whenever it is legal.
package strategy
