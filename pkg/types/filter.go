package types

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Filter represents the dashboard query parameters. A zero field means
// "no restriction".
type Filter struct {
	// Date restricts rows to trucks whose arrival falls on this local
	// calendar date (midnight in the configured zone).
	Date null.Time `json:"date,omitempty"`
	// Products restricts rows to these product group labels.
	Products []string `json:"products,omitempty"`
	// Direction restricts rows to trucks whose security load direction
	// matches (Uploading or Unloading). Trucks without a security
	// record are excluded while this filter is active.
	Direction null.String `json:"direction,omitempty"`
}

func (f Filter) AllowsProduct(p null.String) bool {
	if len(f.Products) == 0 {
		return true
	}
	if !p.Valid {
		return false
	}
	for _, want := range f.Products {
		if p.String == want {
			return true
		}
	}
	return false
}

func (f Filter) AllowsDirection(d null.String) bool {
	if !f.Direction.Valid {
		return true
	}
	return d.Valid && d.String == f.Direction.String
}

// AllowsDate reports whether ts falls on the filter date in loc.
// An absent ts never matches an active date filter.
func (f Filter) AllowsDate(ts null.Time, loc *time.Location) bool {
	if !f.Date.Valid {
		return true
	}
	if !ts.Valid {
		return false
	}
	return SameLocalDate(ts.Time, f.Date.Time, loc)
}

func SameLocalDate(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
