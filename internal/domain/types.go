// Package domain defines the core types shared across the marketTracker
// engine: daily bars and the tracked instrument universe.
package domain

// DateFormat is the canonical date layout used everywhere a date is stored
// or compared as a string: YYYYMMDD.
const DateFormat = "20060102"

// Bar is one instrument's end-of-day bar for one calendar date. Date is in
// the canonical YYYYMMDD form. A Bar always carries both open and close;
// partial bars are never stored.
type Bar struct {
	Ticker string
	Date   string
	Open   float64
	Close  float64
}

// Universe is the fixed, ordered set of instruments the deployment tracks.
type Universe []string

// DefaultUniverse is the ETF set tracked by the reference deployment.
var DefaultUniverse = Universe{"VWO", "VEA", "SCHB", "ESGV", "VTI", "BNDX", "BND"}

// Contains reports whether ticker is part of the universe.
func (u Universe) Contains(ticker string) bool {
	for _, t := range u {
		if t == ticker {
			return true
		}
	}
	return false
}
