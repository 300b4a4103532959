package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/skygridgo/internal/model"
)

func tableOf(descs ...*model.Descriptor) FileTable {
	table := FileTable{}
	for _, d := range descs {
		table.add(d.Format.Key(), d.ObjectType, d)
	}
	return table
}

func named(d *model.Descriptor, group string) *model.Descriptor {
	d.Group = model.GroupMark{State: model.GroupNamed, Names: []string{group}, Scalar: true}
	return d
}

func TestMergeSources_PreservesOrder(t *testing.T) {
	first := tableOf(catalogDesc("galaxy", "a.fits"))
	second := tableOf(catalogDesc("galaxy", "b.fits"))

	merged := mergeSources([]FileTable{first, second})
	list := merged["single-CCD-catalog"]["galaxy"]
	require.Len(t, list, 2)
	assert.Equal(t, "a.fits", list[0].Name)
	assert.Equal(t, "b.fits", list[1].Name)
}

func TestFuse_UnionsGroupTags(t *testing.T) {
	table := tableOf(
		named(catalogDesc("galaxy", "g.fits"), "pair_a"),
		named(catalogDesc("galaxy", "g.fits"), "pair_b"),
	)

	fuse(table)
	list := table["single-CCD-catalog"]["galaxy"]
	require.Len(t, list, 1)
	assert.ElementsMatch(t, []string{"pair_a", "pair_b"}, list[0].Group.Names)
}

func TestFuse_NormalizesBooleanMarks(t *testing.T) {
	plain := catalogDesc("galaxy", "g.fits")
	marked := catalogDesc("galaxy", "g.fits")
	marked.Group = model.GroupMark{State: model.GroupOn}
	table := tableOf(plain, marked)

	fuse(table)
	assert.Len(t, table["single-CCD-catalog"]["galaxy"], 1)
}

func TestFuse_KeepsDistinctDescriptors(t *testing.T) {
	withFields := catalogDesc("galaxy", "g.fits")
	withFields.Fields = []any{"ra"}
	table := tableOf(catalogDesc("galaxy", "g.fits"), withFields)

	fuse(table)
	assert.Len(t, table["single-CCD-catalog"]["galaxy"], 2)
}

func TestDeriveGroups_BuildsReverseIndex(t *testing.T) {
	table := tableOf(
		named(catalogDesc("galaxy", "g.fits"), "pair_0"),
		named(catalogDesc("star", "s.fits"), "pair_0"),
	)

	groups, order, err := deriveGroups(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"pair_0"}, order)
	assert.Equal(t, GroupTable{
		"pair_0": {"single-CCD-catalog": {"galaxy": 0, "star": 0}},
	}, groups)
}

func TestDeriveGroups_FormatSpanConflict(t *testing.T) {
	coadd := &model.Descriptor{Name: "c.fits", ObjectType: "galaxy"}
	coadd.Format.Epoch, coadd.Format.Extent, coadd.Format.DataFormat = "coadd", "CCD", "catalog"
	table := tableOf(
		named(catalogDesc("galaxy", "g.fits"), "pair_0"),
		named(coadd, "pair_0"),
	)

	_, _, err := deriveGroups(table)
	require.ErrorIs(t, err, ErrGroupConflict)
}

func TestDeriveGroups_DuplicateObjectTypeConflict(t *testing.T) {
	table := tableOf(
		named(catalogDesc("galaxy", "g1.fits"), "pair_0"),
		named(catalogDesc("galaxy", "g2.fits"), "pair_0"),
	)

	_, _, err := deriveGroups(table)
	require.ErrorIs(t, err, ErrGroupConflict)
}

func TestCollapseAliases_DropsLaterDuplicate(t *testing.T) {
	galaxy := catalogDesc("galaxy", "g.fits")
	galaxy.Group = model.GroupMark{State: model.GroupNamed, Names: []string{"pair_0", "alias"}}
	star := catalogDesc("star", "s.fits")
	star.Group = model.GroupMark{State: model.GroupNamed, Names: []string{"pair_0", "alias"}}
	table := tableOf(galaxy, star)

	groups, order, err := deriveGroups(table)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	collapseAliases(table, groups, order)
	assert.Len(t, groups, 1)
	_, kept := groups["alias"]
	_, keptFirst := groups["pair_0"]
	assert.False(t, kept)
	assert.True(t, keptFirst)
	assert.Equal(t, []string{"pair_0"}, galaxy.Group.Names)
	assert.Equal(t, []string{"pair_0"}, star.Group.Names)
}

func TestRemoveGroup_ScalarRevertsToEligible(t *testing.T) {
	d := named(catalogDesc("galaxy", "g.fits"), "pair_0")
	table := tableOf(d)

	removeGroup(table, "pair_0")
	assert.Equal(t, model.GroupOn, d.Group.State)
	assert.True(t, d.Group.Eligible())
}
