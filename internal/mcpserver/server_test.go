package mcpserver

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdraley/xsdtools/schema"
)

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []int
	}{
		{"default limit returns all when under 100", 0, 0, []int{0, 1, 2, 3, 4}},
		{"explicit limit", 0, 2, []int{0, 1}},
		{"offset and limit", 1, 2, []int{1, 2}},
		{"offset beyond end", 5, 2, nil},
		{"negative offset", -1, 2, nil},
		{"limit exceeds remaining", 3, 10, []int{3, 4}},
		{"overflow limit", 1, math.MaxInt, []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paginate(items, tt.offset, tt.limit))
		})
	}
}

func TestPaginate_MaxLimitCap(t *testing.T) {
	items := make([]int, cfg.MaxLimit+500)
	got := paginate(items, 0, cfg.MaxLimit+500)
	assert.Len(t, got, cfg.MaxLimit, "limit should be capped at MaxLimit")
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error returns empty string", nil, ""},
		{
			"strips absolute path",
			fmt.Errorf("malformed document /home/user/schemas/orders.xsd at line 3"),
			"malformed document <path> at line 3",
		},
		{
			"preserves non-path content",
			fmt.Errorf("not a schema (root element is <html>)"),
			"not a schema (root element is <html>)",
		},
		{
			"strips multiple paths",
			fmt.Errorf("copy /tmp/a.xsd to /tmp/b.xsd failed"),
			"copy <path> to <path> failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeError(tt.err))
		})
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds([]string{"complexType", "element"})
	require.NoError(t, err)
	assert.Equal(t, []schema.Kind{schema.KindComplexType, schema.KindElement}, kinds)

	kinds, err = parseKinds(nil)
	require.NoError(t, err)
	assert.Nil(t, kinds)

	_, err = parseKinds([]string{"type"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid kind "type"`)
}
