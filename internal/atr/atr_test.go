package atr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReadable(t *testing.T) {
	cases := map[string]bool{
		"7362_NA_NA_147_TRAIN-ST_DORCHESTER_24-HOURS_XXX_03-19-2014.XLSX":           true,
		"data/raw/7362_NA_NA_147_TRAIN-ST_DORCHESTER_24-HOURS_XXX_03-19-2014.XLSX": true,
		"7362_NA_NA_147_TRAIN-ST_DORCHESTER_48-HOURS_XXX_03-19-2014.XLSX":           false,
		"7362_NA_NA_147_TRAIN-ST_DORCHESTER_24-HOURS_SPD_03-19-2014.XLSX":           false,
		"7362_NA_NA_147_TRAIN-ST_DORCHESTER_24-HOURS_XXX_03-19-2014.PDF":            false,
		"7362_NA_NA_147_TRAIN-ST_DORCHESTER_24-HOURS_XXX_03-19-2014":                false,
		"short_name.XLSX": false,
	}
	for name, want := range cases {
		assert.Equal(t, want, IsReadable(name), name)
	}
}

func TestAddress(t *testing.T) {
	addr, ok := Address("7362_NA_NA_147_TRAIN-ST_DORCHESTER_24-HOURS_XXX_03-19-2014.XLSX", "")
	assert.True(t, ok)
	assert.Equal(t, "147 TRAIN ST Boston, MA", addr)

	addr, ok = Address("1_NA_NA_12_OLD-COLONY-AVE_SOUTH-BOSTON_24-HOURS_XXX_01-01-2015.XLSX", "Cambridge, MA")
	assert.True(t, ok)
	assert.Equal(t, "12 OLD COLONY AVE Cambridge, MA", addr)

	_, ok = Address("too_short", "")
	assert.False(t, ok)
}
