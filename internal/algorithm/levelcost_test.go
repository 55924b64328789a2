package algorithm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelCostFlatAndFree(t *testing.T) {
	for _, id := range []string{"flat", "free"} {
		fn, ok := LevelCostFor(id)
		require.True(t, ok, id)
		assert.Empty(t, fn(2, nil), id)
		assert.Empty(t, fn(10, nil), id)
	}
}

func TestLinearCost(t *testing.T) {
	fn, ok := LevelCostFor("linear_cost")
	require.True(t, ok)

	params := Params{"resourceId": "gold", "base": 10.0, "perLevel": 5.0}

	// Free at level 1 and below.
	assert.Empty(t, fn(1, params))
	assert.Empty(t, fn(0, params))

	// Bare resource ids normalize to player scope.
	assert.Equal(t, Cost{"player.gold": 10}, fn(2, params))
	assert.Equal(t, Cost{"player.gold": 15}, fn(3, params))
	assert.Equal(t, Cost{"player.gold": 50}, fn(10, params))
}

func TestLinearCostScopedResource(t *testing.T) {
	fn, _ := LevelCostFor("linear_cost")
	params := Params{"resourceId": "character.soul", "base": 3.0, "perLevel": 0.0}
	assert.Equal(t, Cost{"character.soul": 3}, fn(4, params))
}

func TestMixedLinearCost(t *testing.T) {
	fn, ok := LevelCostFor("mixed_linear_cost")
	require.True(t, ok)

	params := Params{
		"costs": []any{
			map[string]any{"scope": "player", "resourceId": "gold", "base": 4.0, "perLevel": 2.0},
			map[string]any{"scope": "character", "resourceId": "souls", "base": 1.0, "perLevel": 1.0},
		},
	}

	assert.Empty(t, fn(1, params))
	assert.Equal(t, Cost{"player.gold": 4, "character.souls": 1}, fn(2, params))
	assert.Equal(t, Cost{"player.gold": 8, "character.souls": 3}, fn(4, params))
}

func TestTotalCostSumsPerTargetLevel(t *testing.T) {
	fn, _ := LevelCostFor("linear_cost")
	params := Params{"resourceId": "gold", "base": 10.0, "perLevel": 5.0}

	// Levels 2 and 3: 10 + 15.
	total := TotalCost(fn, 1, 3, params)
	assert.Equal(t, Cost{"player.gold": 25}, total)

	// Empty range.
	assert.Empty(t, TotalCost(fn, 3, 3, params))
}

func TestResourceIDHelpers(t *testing.T) {
	assert.Equal(t, "player.gold", NormalizeResourceID("gold"))
	assert.Equal(t, "character.soul", NormalizeResourceID("character.soul"))

	scope, key := SplitResourceID("character.soul")
	assert.Equal(t, "character", scope)
	assert.Equal(t, "soul", key)

	scope, key = SplitResourceID("gold")
	assert.Equal(t, "player", scope)
	assert.Equal(t, "gold", key)
}

func TestValidateLevelCost(t *testing.T) {
	assert.NoError(t, ValidateLevelCost("flat", nil))
	assert.NoError(t, ValidateLevelCost("linear_cost", Params{"resourceId": "gold", "base": 1.0}))

	assert.Error(t, ValidateLevelCost("linear_cost", Params{"base": 1.0}))
	assert.Error(t, ValidateLevelCost("mixed_linear_cost", Params{}))
	assert.Error(t, ValidateLevelCost("mixed_linear_cost", Params{
		"costs": []any{map[string]any{"scope": "guild", "resourceId": "gold"}},
	}))

	err := ValidateLevelCost("exp_cost", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "linear_cost")
}
