package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_RoundTrip(t *testing.T) {
	f := New(EpochSingle, "CCD", "catalog")
	assert.Equal(t, "single-CCD-catalog", f.Key())

	parsed, err := Parse(f.Key())
	require.NoError(t, err)
	assert.Equal(t, f, parsed)
}

func TestParse_RejectsBadKeys(t *testing.T) {
	_, err := Parse("single-CCD")
	assert.Error(t, err)

	_, err = Parse("single--catalog")
	assert.Error(t, err)
}

func TestMultiepoch(t *testing.T) {
	assert.True(t, New(EpochMultiepoch, "field", "catalog").Multiepoch())
	assert.False(t, New(EpochCoadd, "field", "catalog").Multiepoch())
}

func TestAxes_PriorityOrder(t *testing.T) {
	names := make([]string, len(Axes))
	for i, a := range Axes {
		names[i] = a.Name
	}
	assert.Equal(t, []string{KeyEpoch, KeyExtent, KeyDataFormat, KeyObjectType}, names)
}

func TestAxisSpec_Contains(t *testing.T) {
	objectAxis := Axes[3]
	assert.True(t, objectAxis.Contains("galaxy lens"))
	assert.False(t, objectAxis.Contains("galaxies"))
}

func TestCanonical_Components(t *testing.T) {
	key, err := Canonical("single", "CCD", "catalog")
	require.NoError(t, err)
	assert.Equal(t, "single-CCD-catalog", key)
}

func TestCanonical_FullKeyPassesThrough(t *testing.T) {
	key, err := Canonical("multiepoch-field-image", "", "")
	require.NoError(t, err)
	assert.Equal(t, "multiepoch-field-image", key)
}

func TestCanonical_FormatValue(t *testing.T) {
	key, err := Canonical(New("coadd", "tract", "catalog"), "", "")
	require.NoError(t, err)
	assert.Equal(t, "coadd-tract-catalog", key)
}

func TestCanonical_DoubleSpecification(t *testing.T) {
	_, err := Canonical(New("coadd", "tract", "catalog"), "CCD", "")
	assert.Error(t, err)

	_, err = Canonical("coadd-tract-catalog", "CCD", "catalog")
	assert.Error(t, err)
}

func TestCanonical_Incomplete(t *testing.T) {
	_, err := Canonical("single", "", "")
	assert.Error(t, err)

	_, err = Canonical("single", "CCD", "")
	assert.Error(t, err)
}
