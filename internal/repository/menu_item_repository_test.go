package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMenuItemQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   MenuItemFilter
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "no_filter",
			filter:   MenuItemFilter{},
			wantSQL:  "SELECT id, name, price, category, image_url, available, menu_collection_id FROM menu_items ORDER BY id",
			wantArgs: []interface{}{},
		},
		{
			name:     "collection_only",
			filter:   MenuItemFilter{CollectionID: 7},
			wantSQL:  "SELECT id, name, price, category, image_url, available, menu_collection_id FROM menu_items WHERE menu_collection_id = ? ORDER BY id",
			wantArgs: []interface{}{uint64(7)},
		},
		{
			name:     "search_term_wrapped_in_wildcards",
			filter:   MenuItemFilter{SearchTerm: "trà"},
			wantSQL:  "SELECT id, name, price, category, image_url, available, menu_collection_id FROM menu_items WHERE name LIKE ? ORDER BY id",
			wantArgs: []interface{}{"%trà%"},
		},
		{
			name:     "all_filters_joined_with_and",
			filter:   MenuItemFilter{CollectionID: 7, SearchTerm: "cà phê", Category: "Cà phê"},
			wantSQL:  "SELECT id, name, price, category, image_url, available, menu_collection_id FROM menu_items WHERE menu_collection_id = ? AND name LIKE ? AND category = ? ORDER BY id",
			wantArgs: []interface{}{uint64(7), "%cà phê%", "Cà phê"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildMenuItemQuery(tt.filter)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
