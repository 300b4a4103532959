package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/skygridgo/internal/resolve"
)

var bothFormats = []string{"single-CCD-catalog", "single-field-catalog"}

func TestParse_AttachesToEveryFormat(t *testing.T) {
	payload := map[string]any{
		"sys_test0": map[string]any{"name": "CorrelationFunction", "type": "GalaxyShear"},
	}

	tests, err := Parse(context.Background(), payload, bothFormats)
	require.NoError(t, err)
	require.Len(t, tests["single-CCD-catalog"], 1)
	require.Len(t, tests["single-field-catalog"], 1)
	assert.Equal(t, "GalaxyShear", tests["single-CCD-catalog"][0].Type)
}

func TestParse_RestrictionNarrowsFormats(t *testing.T) {
	payload := map[string]any{
		"sys_test0": map[string]any{
			"name": "WhiskerPlot", "type": "Star", "extent": "field",
		},
	}

	tests, err := Parse(context.Background(), payload, bothFormats)
	require.NoError(t, err)
	assert.Empty(t, tests["single-CCD-catalog"])
	assert.Len(t, tests["single-field-catalog"], 1)
}

func TestParse_RestrictionListFansOut(t *testing.T) {
	payload := map[string]any{
		"sys_test0": map[string]any{
			"name": "WhiskerPlot", "type": "Star", "extent": []any{"CCD", "field"},
		},
	}

	tests, err := Parse(context.Background(), payload, bothFormats)
	require.NoError(t, err)
	assert.Len(t, tests["single-CCD-catalog"], 1)
	assert.Len(t, tests["single-field-catalog"], 1)
}

func TestParse_NestedDeclaration(t *testing.T) {
	payload := map[string]any{
		"sys_test0": map[string]any{
			"CCD": map[string]any{"name": "ScatterPlot", "type": "StarVsPSFG1"},
		},
	}

	tests, err := Parse(context.Background(), payload, bothFormats)
	require.NoError(t, err)
	require.Len(t, tests["single-CCD-catalog"], 1)
	assert.Empty(t, tests["single-field-catalog"])
	assert.Equal(t, "StarVsPSFG1", tests["single-CCD-catalog"][0].Type)
}

func TestParse_ListOfDeclarations(t *testing.T) {
	payload := map[string]any{
		"sys_tests": []any{
			map[string]any{"name": "WhiskerPlot", "type": "Star"},
			map[string]any{"name": "Stat", "field": "g1", "object_type": "star"},
		},
	}

	tests, err := Parse(context.Background(), payload, []string{"single-CCD-catalog"})
	require.NoError(t, err)
	require.Len(t, tests["single-CCD-catalog"], 2)
	stat := tests["single-CCD-catalog"][1]
	assert.Equal(t, KindStat, stat.Kind)
	assert.Equal(t, "g1", stat.Field)
	assert.Equal(t, "star", stat.ObjectType)
}

func TestParse_DeclarationsSortedByKey(t *testing.T) {
	payload := map[string]any{
		"sys_test1": map[string]any{"name": "WhiskerPlot", "type": "Star"},
		"sys_test0": map[string]any{"name": "ScatterPlot", "type": "StarVsPSFG1"},
	}

	tests, err := Parse(context.Background(), payload, []string{"single-CCD-catalog"})
	require.NoError(t, err)
	require.Len(t, tests["single-CCD-catalog"], 2)
	assert.Equal(t, KindScatterPlot, tests["single-CCD-catalog"][0].Kind)
	assert.Equal(t, KindWhiskerPlot, tests["single-CCD-catalog"][1].Kind)
}

func TestMakeTest_TreecorrKwargsMergeIntoExtra(t *testing.T) {
	payload := map[string]any{
		"sys_test0": map[string]any{
			"name": "CorrelationFunction", "type": "GalaxyShear",
			"extra_args":      map[string]any{"flip_g1": true},
			"treecorr_kwargs": map[string]any{"nbins": 20},
		},
	}

	tests, err := Parse(context.Background(), payload, []string{"single-CCD-catalog"})
	require.NoError(t, err)
	extra := tests["single-CCD-catalog"][0].Extra
	assert.Equal(t, true, extra["flip_g1"])
	assert.Equal(t, 20, extra["nbins"])
}

func TestMakeTest_BinsParsed(t *testing.T) {
	payload := map[string]any{
		"sys_test0": map[string]any{
			"name": "WhiskerPlot", "type": "Star",
			"bins": map[string]any{"name": "List", "field": "ra", "endpoints": []any{0, 1, 2}},
		},
	}

	tests, err := Parse(context.Background(), payload, []string{"single-CCD-catalog"})
	require.NoError(t, err)
	require.Len(t, tests["single-CCD-catalog"][0].Bins, 1)
	assert.Len(t, tests["single-CCD-catalog"][0].Bins[0].Bins(), 2)
}

func TestMakeTest_Validation(t *testing.T) {
	cases := map[string]map[string]any{
		"unknown kind":      {"name": "Histogram"},
		"missing type":      {"name": "CorrelationFunction"},
		"missing stat keys": {"name": "Stat", "field": "g1"},
		"unexpected key":    {"name": "WhiskerPlot", "type": "Star", "treecorr_kwargs": map[string]any{}},
	}
	for label, decl := range cases {
		_, err := Parse(context.Background(), map[string]any{"sys_test0": decl}, []string{"single-CCD-catalog"})
		assert.Error(t, err, label)
	}
}

func TestParse_RejectsScalarDeclaration(t *testing.T) {
	_, err := Parse(context.Background(), map[string]any{"sys_test0": "WhiskerPlot"}, nil)
	require.ErrorIs(t, err, resolve.ErrInvalidValue)
}
