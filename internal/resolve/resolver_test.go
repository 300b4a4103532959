package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nestedSource(perObject map[string]any) map[string]any {
	return map[string]any{
		"single": map[string]any{
			"CCD": map[string]any{
				"catalog": perObject,
			},
		},
	}
}

func mustResolve(t *testing.T, payload map[string]any) *Resolver {
	t.Helper()
	r, err := New(context.Background(), payload)
	require.NoError(t, err)
	return r
}

func TestNew_PairsObjectTypesPositionally(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"file0": nestedSource(map[string]any{
			"galaxy": []any{"g1.fits", "g2.fits"},
			"star":   []any{"s1.fits", "s2.fits"},
		}),
	})

	assert.Equal(t, []string{"single-CCD-catalog"}, r.ListFileTypes())
	require.Equal(t, []string{"_skygrid_group_0", "_skygrid_group_1"}, r.GroupNames())
	assert.Equal(t, map[string]map[string]int{
		"single-CCD-catalog": {"galaxy": 0, "star": 0},
	}, r.Groups()["_skygrid_group_0"])
	assert.Equal(t, map[string]map[string]int{
		"single-CCD-catalog": {"galaxy": 1, "star": 1},
	}, r.Groups()["_skygrid_group_1"])
}

func TestNew_TopLevelGroupFalseDisablesPairing(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"group": false,
		"file0": nestedSource(map[string]any{
			"galaxy": "g.fits",
			"star":   "s.fits",
		}),
	})

	assert.Empty(t, r.GroupNames())
}

func TestNew_SourcesResolveInSortedKeyOrder(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"file1": nestedSource(map[string]any{"galaxy": "b.fits"}),
		"file0": nestedSource(map[string]any{"galaxy": "a.fits"}),
	})

	list := r.Files()["single-CCD-catalog"]["galaxy"]
	require.Len(t, list, 2)
	assert.Equal(t, "a.fits", list[0].Name)
	assert.Equal(t, "b.fits", list[1].Name)
}

func TestNew_IdenticalSourcesFuseAndAliasesCollapse(t *testing.T) {
	source := func() map[string]any {
		return nestedSource(map[string]any{
			"galaxy": "g.fits",
			"star":   "s.fits",
		})
	}
	r := mustResolve(t, map[string]any{"file0": source(), "file1": source()})

	list := r.Files()["single-CCD-catalog"]["galaxy"]
	require.Len(t, list, 1)
	// The two per-source pairs select the same files, so one group name
	// survives as the canonical one.
	assert.Equal(t, []string{"_skygrid_group_0"}, r.GroupNames())
	assert.Equal(t, []string{"_skygrid_group_0"}, list[0].Group.Names)
}

func TestNew_WildcardExpansionFeedsGrouping(t *testing.T) {
	glob := tableGlob(map[string][]string{
		"g*.fits": {"g2.fits", "g1.fits"},
		"s*.fits": {"s1.fits", "s2.fits"},
	})
	payload := map[string]any{
		"wildcard": true,
		"file0": nestedSource(map[string]any{
			"galaxy": "g*.fits",
			"star":   "s*.fits",
		}),
	}
	r, err := NewWithOptions(context.Background(), payload, Options{Glob: glob})
	require.NoError(t, err)

	list := r.Files()["single-CCD-catalog"]["galaxy"]
	require.Len(t, list, 2)
	// Matches are sorted before pairing, so g1 pairs with s1.
	assert.Equal(t, "g1.fits", list[0].Name)
	assert.Equal(t, []string{"_skygrid_group_0", "_skygrid_group_1"}, r.GroupNames())
}

func TestNew_TopLevelDefaultsDistribute(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"fields":      []any{"ra", "dec"},
		"flag_field":  "is_good",
		"file_reader": map[string]any{"extent": "CCD", "name": "ASCII"},
		"file0": nestedSource(map[string]any{
			"galaxy": "g.fits",
			"star":   map[string]any{"name": "s.fits", "fields": []any{"x"}},
		}),
	})

	list := r.Files()["single-CCD-catalog"]
	galaxy, star := list["galaxy"][0], list["star"][0]
	assert.Equal(t, []any{"ra", "dec"}, galaxy.Fields)
	assert.Equal(t, []any{"x"}, star.Fields, "descriptor-level fields win over the default")
	assert.Equal(t, []any{"is_good"}, galaxy.FlagField)
	assert.Equal(t, "ASCII", galaxy.FileReader)
}

func TestNew_GroupedBinsRejected(t *testing.T) {
	_, err := New(context.Background(), map[string]any{
		"file0": nestedSource(map[string]any{
			"galaxy": map[string]any{
				"name": "g.fits",
				"bins": map[string]any{"name": "List", "field": "ra", "endpoints": []any{0, 1}},
			},
			"star": "s.fits",
		}),
	})
	require.ErrorIs(t, err, ErrGroupedBins)
}

func TestNew_InvalidSourceShape(t *testing.T) {
	_, err := New(context.Background(), map[string]any{"file0": "g.fits"})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestListObjects(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"group": false,
		"file0": nestedSource(map[string]any{"star": "s.fits", "galaxy": "g.fits"}),
	})

	objects, err := r.ListObjects("single", "CCD", "catalog")
	require.NoError(t, err)
	assert.Equal(t, []string{"galaxy", "star"}, objects)

	objects, err = r.ListObjects("coadd-CCD-catalog", "", "")
	require.NoError(t, err)
	assert.Empty(t, objects)

	_, err = r.ListObjects("single", "", "")
	assert.Error(t, err)
}

func TestListData_ExpandsBinsWithoutMutatingTable(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"group": false,
		"file0": nestedSource(map[string]any{
			"galaxy": map[string]any{
				"name": "g.fits",
				"bins": map[string]any{"name": "List", "field": "ra", "endpoints": []any{0, 1, 2}},
			},
		}),
	})

	descs, err := r.ListData("galaxy", "single", "CCD", "catalog")
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Len(t, descs[0].BinList, 1)

	assert.Len(t, r.Files()["single-CCD-catalog"]["galaxy"], 1)
}

func TestListDataGrouped_FollowsRequestedOrder(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"file0": nestedSource(map[string]any{
			"galaxy": []any{"g1.fits", "g2.fits"},
			"star":   []any{"s1.fits", "s2.fits"},
		}),
	})

	pairs, err := r.ListDataGrouped([]string{"star", "galaxy"}, "single", "CCD", "catalog")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "s1.fits", pairs[0][0].Name)
	assert.Equal(t, "g1.fits", pairs[0][1].Name)
	assert.Equal(t, "s2.fits", pairs[1][0].Name)
}

func TestListDataGrouped_SkipsUncoveredGroups(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"file0": nestedSource(map[string]any{
			"galaxy": "g.fits",
			"star":   "s.fits",
		}),
	})

	pairs, err := r.ListDataGrouped([]string{"galaxy", "galaxy lens"}, "single", "CCD", "catalog")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestQueryFile(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"group": false,
		"file0": nestedSource(map[string]any{"galaxy": "g.fits"}),
		"file1": map[string]any{
			"multiepoch": map[string]any{
				"field": map[string]any{
					"catalog": map[string]any{"galaxy": []any{"g.fits", "h.fits"}},
				},
			},
		},
	})

	occurrences := r.QueryFile("g.fits")
	require.Len(t, occurrences, 2)
	assert.Equal(t, "multiepoch-field-catalog", occurrences[0].Format)
	assert.Equal(t, "single-CCD-catalog", occurrences[1].Format)

	assert.Empty(t, r.QueryFile("nope.fits"))
}

func TestNew_ExplicitGroupNamesSurvive(t *testing.T) {
	r := mustResolve(t, map[string]any{
		"file0": nestedSource(map[string]any{
			"galaxy": map[string]any{"name": "g.fits", "group": "my_pair"},
			"star":   map[string]any{"name": "s.fits", "group": "my_pair"},
		}),
	})

	require.Equal(t, []string{"my_pair"}, r.GroupNames())
	assert.Equal(t, map[string]map[string]int{
		"single-CCD-catalog": {"galaxy": 0, "star": 0},
	}, r.Groups()["my_pair"])
}
