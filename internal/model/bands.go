package model

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RevenueBand is one of a fixed, ordered set of annual-revenue ranges.
type RevenueBand string

const (
	RevenueBandUnknown   RevenueBand = ""
	RevenueBand0To500K   RevenueBand = "0-500K"
	RevenueBand500KTo5M  RevenueBand = "500K-5M"
	RevenueBand5MTo25M   RevenueBand = "5M-25M"
	RevenueBand25MTo75M  RevenueBand = "25M-75M"
	RevenueBand75MTo200M RevenueBand = "75M-200M"
	RevenueBand200MTo1B  RevenueBand = "200M-1B"
	RevenueBand1BPlus    RevenueBand = "1B+"
)

// revenueBandOrder lists bands from smallest to largest. Ordinal positions
// drive monotonicity checks for inheritance and the sanity-check bump.
var revenueBandOrder = []RevenueBand{
	RevenueBand0To500K,
	RevenueBand500KTo5M,
	RevenueBand5MTo25M,
	RevenueBand25MTo75M,
	RevenueBand75MTo200M,
	RevenueBand200MTo1B,
	RevenueBand1BPlus,
}

// revenueBandFloor holds the inclusive lower bound in USD for each band.
var revenueBandFloor = map[RevenueBand]float64{
	RevenueBand0To500K:   0,
	RevenueBand500KTo5M:  500_000,
	RevenueBand5MTo25M:   5_000_000,
	RevenueBand25MTo75M:  25_000_000,
	RevenueBand75MTo200M: 75_000_000,
	RevenueBand200MTo1B:  200_000_000,
	RevenueBand1BPlus:    1_000_000_000,
}

// AllRevenueBands returns the ordered band list, smallest first.
func AllRevenueBands() []RevenueBand {
	out := make([]RevenueBand, len(revenueBandOrder))
	copy(out, revenueBandOrder)
	return out
}

// Ordinal returns the band's position in ascending order, or -1 for unknown.
func (b RevenueBand) Ordinal() int {
	for i, band := range revenueBandOrder {
		if band == b {
			return i
		}
	}
	return -1
}

// FloorUSD returns the band's inclusive lower bound in dollars.
func (b RevenueBand) FloorUSD() float64 {
	return revenueBandFloor[b]
}

// CeilingUSD returns the band's exclusive upper bound in dollars, or +Inf
// for the top band.
func (b RevenueBand) CeilingUSD() float64 {
	ord := b.Ordinal()
	if ord < 0 || ord == len(revenueBandOrder)-1 {
		return math.Inf(1)
	}
	return revenueBandFloor[revenueBandOrder[ord+1]]
}

// Next returns the next band up, or the same band if already at the top
// or unknown.
func (b RevenueBand) Next() RevenueBand {
	ord := b.Ordinal()
	if ord < 0 || ord >= len(revenueBandOrder)-1 {
		return b
	}
	return revenueBandOrder[ord+1]
}

// RevenueBandFor maps a non-negative USD amount to exactly one band.
// Negative or non-finite inputs map to unknown.
func RevenueBandFor(usd float64) RevenueBand {
	if usd < 0 || math.IsNaN(usd) || math.IsInf(usd, 0) {
		return RevenueBandUnknown
	}
	for i := len(revenueBandOrder) - 1; i >= 0; i-- {
		if usd >= revenueBandFloor[revenueBandOrder[i]] {
			return revenueBandOrder[i]
		}
	}
	return RevenueBand0To500K
}

// EmployeeBand is one of a fixed, ordered set of employee-count ranges.
type EmployeeBand string

const (
	EmployeeBandUnknown  EmployeeBand = ""
	EmployeeBand1To10    EmployeeBand = "1-10 Employees"
	EmployeeBand11To50   EmployeeBand = "11-50 Employees"
	EmployeeBand51To200  EmployeeBand = "51-200 Employees"
	EmployeeBand201To500 EmployeeBand = "201-500 Employees"
	EmployeeBand501To1K  EmployeeBand = "501-1,000 Employees"
	EmployeeBand1KTo5K   EmployeeBand = "1,001-5,000 Employees"
	EmployeeBand5KTo10K  EmployeeBand = "5,001-10,000 Employees"
	EmployeeBand10KPlus  EmployeeBand = "10,000+ Employees"
)

var employeeBandOrder = []EmployeeBand{
	EmployeeBand1To10,
	EmployeeBand11To50,
	EmployeeBand51To200,
	EmployeeBand201To500,
	EmployeeBand501To1K,
	EmployeeBand1KTo5K,
	EmployeeBand5KTo10K,
	EmployeeBand10KPlus,
}

// employeeBandFloor holds the inclusive minimum headcount for each band.
var employeeBandFloor = map[EmployeeBand]int{
	EmployeeBand1To10:    1,
	EmployeeBand11To50:   11,
	EmployeeBand51To200:  51,
	EmployeeBand201To500: 201,
	EmployeeBand501To1K:  501,
	EmployeeBand1KTo5K:   1001,
	EmployeeBand5KTo10K:  5001,
	EmployeeBand10KPlus:  10001,
}

// AllEmployeeBands returns the ordered band list, smallest first.
func AllEmployeeBands() []EmployeeBand {
	out := make([]EmployeeBand, len(employeeBandOrder))
	copy(out, employeeBandOrder)
	return out
}

// Ordinal returns the band's position in ascending order, or -1 for unknown.
func (b EmployeeBand) Ordinal() int {
	for i, band := range employeeBandOrder {
		if band == b {
			return i
		}
	}
	return -1
}

// FloorCount returns the band's inclusive minimum headcount.
func (b EmployeeBand) FloorCount() int {
	return employeeBandFloor[b]
}

// EmployeeBandFor maps a positive headcount to exactly one band.
// Zero or negative counts map to unknown.
func EmployeeBandFor(count int) EmployeeBand {
	if count <= 0 {
		return EmployeeBandUnknown
	}
	for i := len(employeeBandOrder) - 1; i >= 0; i-- {
		if count >= employeeBandFloor[employeeBandOrder[i]] {
			return employeeBandOrder[i]
		}
	}
	return EmployeeBand1To10
}

// rangePattern matches headcount ranges like "51-200", "1,001-5,000",
// or "10,000+" inside free text ("51-200 employees on LinkedIn").
var rangePattern = regexp.MustCompile(`([\d,]+)\s*(?:-|–|to)\s*([\d,]+)|([\d,]+)\s*\+`)

// ParseEmployeeBand extracts an employee band from a free-text range hint.
// The upper bound of the range decides the band so "51-200" and "200" agree.
func ParseEmployeeBand(text string) EmployeeBand {
	m := rangePattern.FindStringSubmatch(text)
	if m == nil {
		if n := parseCount(text); n > 0 {
			return EmployeeBandFor(n)
		}
		return EmployeeBandUnknown
	}
	if m[3] != "" {
		if n := parseCount(m[3]); n > 0 {
			return EmployeeBandFor(n + 1)
		}
		return EmployeeBandUnknown
	}
	upper := parseCount(m[2])
	if upper <= 0 {
		return EmployeeBandUnknown
	}
	return EmployeeBandFor(upper)
}

func parseCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	digits := strings.Builder{}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else if digits.Len() > 0 {
			break
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}
