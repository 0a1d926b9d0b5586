package results

import (
	"sort"
	"strings"
)

// ViewState is the per-session inspection state of one job table.
type ViewState struct {
	Search   string   `json:"search"`
	Mode     Mode     `json:"mode"`
	Required []string `json:"required"`
	Sort     SortKey  `json:"sort"`
	Page     int      `json:"page"`
}

// NewViewState returns the state of a freshly opened view.
func NewViewState() ViewState {
	return ViewState{Mode: ModeSuccess, Sort: SortByRecency, Required: []string{}, Page: 1}
}

// ViewUpdate carries the inputs of one interaction. Nil fields are left unchanged.
type ViewUpdate struct {
	Search   *string
	Mode     *Mode
	Required *[]string
	Sort     *SortKey
	Page     *int
}

// Apply folds u into the state. Any change to search, mode, required keywords or sort
// sends the view back to page 1, whatever page u asks for.
func (v *ViewState) Apply(u ViewUpdate) {
	changed := false

	if u.Search != nil && strings.TrimSpace(*u.Search) != v.Search {
		v.Search = strings.TrimSpace(*u.Search)
		changed = true
	}
	if u.Mode != nil && *u.Mode != v.Mode {
		v.Mode = *u.Mode
		changed = true
	}
	if u.Required != nil {
		next := normalizeKeywords(*u.Required)
		if !sameKeywords(next, v.Required) {
			v.Required = next
			changed = true
		}
	}
	if u.Sort != nil && *u.Sort != v.Sort {
		v.Sort = *u.Sort
		changed = true
	}

	switch {
	case changed:
		v.Page = 1
	case u.Page != nil:
		v.Page = *u.Page
	}
	if v.Page < 1 {
		v.Page = 1
	}
}

// ToggleKeyword flips the "required" condition of keyword and resets the page.
func (v *ViewState) ToggleKeyword(keyword string) {
	next := make([]string, 0, len(v.Required)+1)
	found := false
	for _, kw := range v.Required {
		if kw == keyword {
			found = true
			continue
		}
		next = append(next, kw)
	}
	if !found {
		next = append(next, keyword)
	}
	v.Apply(ViewUpdate{Required: &next})
}

// Filter returns the entry filter described by the state.
func (v ViewState) Filter() EntryFilter {
	return EntryFilter{Search: v.Search, Mode: v.Mode, Required: v.Required}
}

func normalizeKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func sameKeywords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
