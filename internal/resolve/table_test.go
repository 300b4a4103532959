package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/skygridgo/internal/model"
)

func TestTabulate_SplitsPlainLists(t *testing.T) {
	d := catalogDesc("galaxy", []any{"a.fits", "b.fits"})

	table, err := tabulate([]*model.Descriptor{d})
	require.NoError(t, err)
	list := table["single-CCD-catalog"]["galaxy"]
	require.Len(t, list, 2)
	assert.Equal(t, "a.fits", list[0].Name)
	assert.Equal(t, "b.fits", list[1].Name)
}

func TestTabulate_MultiepochStaysWhole(t *testing.T) {
	d := multiDesc([]any{"a.fits", "b.fits"}, false)

	table, err := tabulate([]*model.Descriptor{d})
	require.NoError(t, err)
	list := table["multiepoch-field-catalog"]["galaxy"]
	require.Len(t, list, 1)
	assert.Equal(t, []any{"a.fits", "b.fits"}, list[0].Name)
}

func TestTabulate_MappingEntryOverlays(t *testing.T) {
	d := catalogDesc("galaxy", []any{
		"a.fits",
		map[string]any{"name": "b.fits", "fields": []any{"ra"}, "nickname": "deep"},
	})

	table, err := tabulate([]*model.Descriptor{d})
	require.NoError(t, err)
	list := table["single-CCD-catalog"]["galaxy"]
	require.Len(t, list, 2)
	assert.Equal(t, "b.fits", list[1].Name)
	assert.Equal(t, []any{"ra"}, list[1].Fields)
	assert.Equal(t, "deep", list[1].Extra["nickname"])
	assert.Nil(t, list[0].Fields)
}

func TestTabulate_MappingEntryNeedsName(t *testing.T) {
	d := catalogDesc("galaxy", []any{map[string]any{"fields": []any{"ra"}}})

	_, err := tabulate([]*model.Descriptor{d})
	require.ErrorIs(t, err, ErrIncompleteSpec)
}
