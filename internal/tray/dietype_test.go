package tray_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
	"github.com/cory-johannsen/dicetray/internal/tray"
)

func loadCatalog(t *testing.T, files map[string]string) *tray.Catalog {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	cat, err := tray.LoadCatalog(dir)
	require.NoError(t, err)
	return cat
}

func TestDieType_String(t *testing.T) {
	assert.Equal(t, "GALAXY_STANDARD_D20", d(20).String())
	assert.Equal(t, "IRON_D100", tray.DieType{SetID: "IRON", Faces: 100}.String())
}

func TestDieType_Equality(t *testing.T) {
	assert.Equal(t, tray.DieType{SetID: "A", Faces: 6}, tray.DieType{SetID: "A", Faces: 6})
	assert.True(t, tray.DieType{SetID: "A", Faces: 20}.Less(tray.DieType{SetID: "B", Faces: 4}))
	assert.True(t, tray.DieType{SetID: "A", Faces: 4}.Less(tray.DieType{SetID: "A", Faces: 6}))
}

// TestDieType_Less_Property verifies Less is a strict total order.
func TestDieType_Less_Property(t *testing.T) {
	gen := rapid.Custom(func(rt *rapid.T) tray.DieType {
		return tray.DieType{
			SetID: rapid.SampledFrom([]string{"A", "B", "GALAXY_STANDARD"}).Draw(rt, "set"),
			Faces: rapid.SampledFrom(dice.StandardSides).Draw(rt, "faces"),
		}
	})
	rapid.Check(t, func(rt *rapid.T) {
		a, b := gen.Draw(rt, "a"), gen.Draw(rt, "b")
		n := 0
		for _, ok := range []bool{a.Less(b), b.Less(a), a == b} {
			if ok {
				n++
			}
		}
		assert.Equal(rt, 1, n)
	})
}

func TestDefaultCatalog(t *testing.T) {
	cat := tray.DefaultCatalog()
	sets := cat.Sets()
	require.Len(t, sets, 1)
	set := sets[0]
	assert.Equal(t, tray.DefaultSetID, set.ID)
	require.Len(t, set.Dice, len(dice.StandardSides))
	assert.Equal(t, 2, set.Dice[0].Type.Faces)
	assert.Equal(t, 100, set.Dice[len(set.Dice)-1].Type.Faces)
	assert.Empty(t, set.Baseline())

	die, ok := cat.Die(d(20))
	require.True(t, ok)
	assert.Equal(t, "galaxy", die.Style)
}

func TestLoadCatalog(t *testing.T) {
	cat := loadCatalog(t, map[string]string{
		"iron.yaml": `
id: IRON
name: Iron
style: iron
dice:
  - faces: 20
    default_count: 1
  - faces: 6
    style: rusty
`,
		"notes.txt": "ignored",
	})

	set, ok := cat.Set("IRON")
	require.True(t, ok)
	assert.Equal(t, "Iron", set.Name)
	require.Len(t, set.Dice, 2)
	assert.Equal(t, 6, set.Dice[0].Type.Faces, "dice are ordered by faces")
	assert.Equal(t, "rusty", set.Dice[0].Style)
	assert.Equal(t, "iron", set.Dice[1].Style)
	assert.Equal(t, tray.DiceCounts{{SetID: "IRON", Faces: 20}: 1}, set.Baseline())

	_, ok = cat.Die(tray.DieType{SetID: "IRON", Faces: 8})
	assert.False(t, ok)
	_, ok = cat.Die(tray.DieType{SetID: "NOPE", Faces: 6})
	assert.False(t, ok)
}

func TestLoadCatalog_Errors(t *testing.T) {
	cases := map[string]string{
		"missing id":      "dice:\n  - faces: 6\n",
		"no dice":         "id: X\n",
		"odd faces":       "id: X\ndice:\n  - faces: 7\n",
		"duplicate faces": "id: X\ndice:\n  - faces: 6\n  - faces: 6\n",
		"negative count":  "id: X\ndice:\n  - faces: 6\n    default_count: -1\n",
		"bad yaml":        "id: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "set.yaml"), []byte(body), 0o644))
			_, err := tray.LoadCatalog(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_EmptyDirAndMissingDir(t *testing.T) {
	_, err := tray.LoadCatalog(t.TempDir())
	assert.Error(t, err)
	_, err = tray.LoadCatalog(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewCatalog_Duplicate(t *testing.T) {
	set := tray.DefaultCatalog().Sets()[0]
	_, err := tray.NewCatalog([]*tray.DiceSet{set, set})
	assert.Error(t, err)
}
