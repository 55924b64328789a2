package algorithm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthFlat(t *testing.T) {
	growth, ok := GrowthFor("flat")
	require.True(t, ok)

	assert.Equal(t, int64(5), growth(5, "strength", 1, nil))
	assert.Equal(t, int64(5), growth(5, "strength", 10, nil))
	assert.Equal(t, int64(5), growth(5.9, "strength", 3, nil))
}

func TestGrowthLinear(t *testing.T) {
	growth, ok := GrowthFor("linear")
	require.True(t, ok)

	params := Params{
		"perLevelMultiplier": 0.1,
		"additivePerLevel":   map[string]any{"hp": 1},
	}

	// Level 1 is the base value.
	assert.Equal(t, int64(5), growth(5, "strength", 1, params))
	assert.Equal(t, int64(20), growth(20, "hp", 1, params))

	// Level 2: floor(5*1.1)=5, floor(20*1.1 + 1)=23.
	assert.Equal(t, int64(5), growth(5, "strength", 2, params))
	assert.Equal(t, int64(23), growth(20, "hp", 2, params))

	// Level 10: floor(5*1.9)=9, floor(20*1.9 + 9)=47.
	assert.Equal(t, int64(9), growth(5, "strength", 10, params))
	assert.Equal(t, int64(47), growth(20, "hp", 10, params))
}

func TestGrowthLinearDefaultsToIdentity(t *testing.T) {
	growth, _ := GrowthFor("linear")
	assert.Equal(t, int64(7), growth(7, "strength", 9, Params{}))
}

func TestGrowthExponential(t *testing.T) {
	growth, ok := GrowthFor("exponential")
	require.True(t, ok)

	params := Params{"exponent": 2.0}
	assert.Equal(t, int64(3), growth(3, "hp", 1, params))
	assert.Equal(t, int64(6), growth(3, "hp", 2, params))
	assert.Equal(t, int64(24), growth(3, "hp", 4, params))
}

func TestValidateGrowth(t *testing.T) {
	assert.NoError(t, ValidateGrowth("flat", nil))
	assert.NoError(t, ValidateGrowth("linear", Params{"perLevelMultiplier": 0.5}))
	assert.NoError(t, ValidateGrowth("exponential", Params{"exponent": 1.5}))

	err := ValidateGrowth("exponential", Params{"exponent": 0.5})
	assert.Error(t, err)

	err = ValidateGrowth("exponential", Params{})
	assert.Error(t, err)

	err = ValidateGrowth("quadratic", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quadratic")
	assert.Contains(t, err.Error(), "exponential")
	assert.Contains(t, err.Error(), "flat")
	assert.Contains(t, err.Error(), "linear")
}

func TestCatalogCoversBothFamilies(t *testing.T) {
	catalog := BuildCatalog()

	assert.ElementsMatch(t, KnownGrowth(), keys(catalog.Growth))
	assert.ElementsMatch(t, KnownLevelCost(), keys(catalog.LevelCost))

	for id, info := range catalog.Growth {
		assert.NotEmpty(t, info.Description, "growth %s", id)
		assert.NotNil(t, info.Params, "growth %s", id)
	}
	assert.Contains(t, catalog.LevelCost["linear_cost"].Params, "resourceId")
}

func keys(m map[string]Info) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
