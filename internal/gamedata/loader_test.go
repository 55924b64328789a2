package gamedata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarve/statekeeper/internal/gamedata"
)

const sampleYAML = `
configId: sample_v1
maxLevel: 10
stats: [strength, hp]
slots: [right_hand, left_hand]
classes:
  warrior:
    baseStats: {strength: 5, hp: 20}
gearDefs:
  sword_basic:
    baseStats: {strength: 3}
    equipPatterns:
      - [right_hand]
  twin_blades:
    baseStats: {strength: 5}
    equipPatterns:
      - [right_hand, left_hand]
    restrictions:
      requiredCharacterLevel: 3
      maxLevelDelta: 2
sets: {}
algorithms:
  growth:
    algorithmId: linear
    params:
      perLevelMultiplier: 0.1
      additivePerLevel: {hp: 1}
  levelCostCharacter:
    algorithmId: linear_cost
    params: {resourceId: gold, base: 10, perLevel: 5}
  levelCostGear:
    algorithmId: flat
statClamps:
  hp: {max: 100}
`

func TestLoadParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := gamedata.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sample_v1", cfg.ConfigID)
	assert.Equal(t, 10, cfg.MaxLevel)
	assert.Equal(t, []string{"strength", "hp"}, cfg.Stats)
	assert.Equal(t, 5.0, cfg.Classes["warrior"].BaseStats["strength"])
	assert.Equal(t, [][]string{{"right_hand"}}, cfg.GearDefs["sword_basic"].EquipPatterns)

	restr := cfg.GearDefs["twin_blades"].Restrictions
	require.NotNil(t, restr)
	assert.Equal(t, 3, restr.RequiredCharacterLevel)
	require.NotNil(t, restr.MaxLevelDelta)
	assert.Equal(t, 2, *restr.MaxLevelDelta)

	assert.Equal(t, "linear", cfg.Algorithms.Growth.AlgorithmID)
	require.NotNil(t, cfg.StatClamps["hp"].Max)
	assert.Equal(t, 100.0, *cfg.StatClamps["hp"].Max)
	assert.Nil(t, cfg.StatClamps["hp"].Min)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := gamedata.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	bad := sampleYAML + "\n"
	bad = bad[:len(bad)-1]
	require.NoError(t, os.WriteFile(path, []byte(bad+"  strength: {min: 0}\n  mana: {min: 0}\n"), 0o644))

	_, err := gamedata.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mana")
}
