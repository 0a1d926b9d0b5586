package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		page      int
		size      int
		wantPage  int
		wantPages int
		wantItems []int
	}{
		{name: "first page", count: 25, page: 1, size: 10, wantPage: 1, wantPages: 3, wantItems: seq(10)},
		{name: "last partial page", count: 25, page: 3, size: 10, wantPage: 3, wantPages: 3, wantItems: []int{21, 22, 23, 24, 25}},
		{name: "beyond last clamps", count: 25, page: 7, size: 10, wantPage: 3, wantPages: 3, wantItems: []int{21, 22, 23, 24, 25}},
		{name: "zero clamps to first", count: 5, page: 0, size: 10, wantPage: 1, wantPages: 1, wantItems: seq(5)},
		{name: "empty", count: 0, page: 4, size: 10, wantPage: 1, wantPages: 0, wantItems: []int{}},
		{name: "exact multiple", count: 20, page: 2, size: 20, wantPage: 1, wantPages: 1, wantItems: seq(20)},
		{name: "default size", count: 12, page: 2, size: 0, wantPage: 2, wantPages: 2, wantItems: []int{11, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(seq(tt.count), tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.count, p.TotalItems)
			assert.Equal(t, tt.wantItems, p.Items)
		})
	}
}

func TestPaginate_SizeIsCapped(t *testing.T) {
	p := Paginate(seq(250), 1, 1000)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Len(t, p.Items, MaxPageSize)
	assert.Equal(t, 3, p.TotalPages)
}

func TestViewState_ResetsPageOnFilterChange(t *testing.T) {
	v := NewViewState()
	page := 4
	v.Apply(ViewUpdate{Page: &page})
	assert.Equal(t, 4, v.Page)

	search := "promo"
	v.Apply(ViewUpdate{Search: &search, Page: &page})
	assert.Equal(t, 1, v.Page, "search change wins over requested page")

	v.Apply(ViewUpdate{Page: &page})
	same := " promo "
	v.Apply(ViewUpdate{Search: &same})
	assert.Equal(t, 4, v.Page, "unchanged search keeps the page")

	mode := ModeErrors
	v.Apply(ViewUpdate{Mode: &mode})
	assert.Equal(t, 1, v.Page)

	v.Apply(ViewUpdate{Page: &page})
	sortKey := SortByMatches
	v.Apply(ViewUpdate{Sort: &sortKey})
	assert.Equal(t, 1, v.Page)

	v.Apply(ViewUpdate{Page: &page})
	v.ToggleKeyword("bonus")
	assert.Equal(t, []string{"bonus"}, v.Required)
	assert.Equal(t, 1, v.Page)

	v.Apply(ViewUpdate{Page: &page})
	reordered := []string{"bonus", "bonus", ""}
	v.Apply(ViewUpdate{Required: &reordered})
	assert.Equal(t, 4, v.Page, "same keyword set keeps the page")

	v.ToggleKeyword("bonus")
	assert.Empty(t, v.Required)
}

func TestViewState_Filter(t *testing.T) {
	v := NewViewState()
	v.ToggleKeyword("casino")
	f := v.Filter()
	assert.Equal(t, ModeSuccess, f.Mode)
	assert.Equal(t, []string{"casino"}, f.Required)
}
