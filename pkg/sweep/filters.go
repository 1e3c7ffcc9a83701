package sweep

import (
	"sort"
)

// Filter binds a template filter name to the host function that implements it.
type Filter struct {
	Name string
	Func string
}

// FilterRegistry is an immutable table of filters for one target.
type FilterRegistry struct {
	funcs map[string]string
}

func newFilterRegistry(filters ...Filter) *FilterRegistry {
	r := &FilterRegistry{funcs: make(map[string]string, len(filters))}
	for _, f := range filters {
		r.funcs[f.Name] = f.Func
	}
	return r
}

// Lookup returns the host function for the named filter.
func (r *FilterRegistry) Lookup(name string) (string, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Filters returns a copy of the registry sorted by filter name.
func (r *FilterRegistry) Filters() []Filter {
	out := make([]Filter, 0, len(r.funcs))
	for name, fn := range r.funcs {
		out = append(out, Filter{Name: name, Func: fn})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// The filter names understood by every target.
const (
	FilterUpper      = "upper"
	FilterLower      = "lower"
	FilterCapitalize = "capitalize"
	FilterTitle      = "title"
	FilterStripTags  = "striptags"
	FilterURLEncode  = "urlencode"
	FilterLinkify    = "linkify"
	FilterEscape     = "escape"
	FilterRandom     = "random"
	FilterLength     = "length"
)

var phpFilters = newFilterRegistry(
	Filter{FilterUpper, "strtoupper"},
	Filter{FilterLower, "strtolower"},
	Filter{FilterCapitalize, "ucfirst"},
	Filter{FilterTitle, "ucwords"},
	Filter{FilterStripTags, "strip_tags"},
	Filter{FilterURLEncode, "urlencode"},
	Filter{FilterLinkify, "sweep_linkify"},
	Filter{FilterEscape, "htmlspecialchars"},
	Filter{FilterRandom, "sweep_random"},
	Filter{FilterLength, "sweep_length"},
)

var starlarkFilters = newFilterRegistry(
	Filter{FilterUpper, "sweep_upper"},
	Filter{FilterLower, "sweep_lower"},
	Filter{FilterCapitalize, "sweep_capitalize"},
	Filter{FilterTitle, "sweep_title"},
	Filter{FilterStripTags, "sweep_striptags"},
	Filter{FilterURLEncode, "sweep_urlencode"},
	Filter{FilterLinkify, "sweep_linkify"},
	Filter{FilterEscape, "sweep_escape"},
	Filter{FilterRandom, "sweep_random"},
	Filter{FilterLength, "sweep_length"},
)
