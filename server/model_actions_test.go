package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/territory/model"
)

func captureModel() *model.Model {
	m := model.NewEmptyModel(6, 6)
	m.AddPlayer(model.NewPlayer("a", "Ann", false))
	m.AddPlayer(model.NewPlayer("b", "Ben", false))
	m.Phase = model.PhaseRunning
	return m
}

func TestCaptureClaimUnowned(t *testing.T) {
	m := captureModel()

	require.Equal(t, CaptureClaimed, Capture(m, "a", 1, 1, false))
	cell := m.At(1, 1)
	assert.Equal(t, "a", cell.Owner)
	assert.Equal(t, ClaimStrength, cell.Strength)
	assert.Equal(t, 5, m.Players["a"].Score)
	assert.True(t, m.Players["a"].Territories.Has(model.Point{X: 1, Y: 1}))

	require.Equal(t, CaptureClaimed, Capture(m, "b", 4, 4, true))
	assert.Equal(t, InitialStrength, m.At(4, 4).Strength)
	requireInvariants(t, m)
}

func TestCaptureWeakAttackFlipsOwnership(t *testing.T) {
	m := captureModel()
	Capture(m, "a", 2, 2, false)
	require.Equal(t, 10, m.At(2, 2).Strength)

	require.Equal(t, CaptureTaken, Capture(m, "b", 2, 2, false))
	cell := m.At(2, 2)
	assert.Equal(t, "b", cell.Owner)
	assert.Equal(t, 10, cell.Strength)
	assert.False(t, m.Players["a"].Territories.Has(model.Point{X: 2, Y: 2}))
	assert.True(t, m.Players["b"].Territories.Has(model.Point{X: 2, Y: 2}))
	assert.Equal(t, 10, m.Players["b"].Score)
	assert.Equal(t, 5, m.Players["a"].Score)
	requireInvariants(t, m)
}

func TestCaptureStrongCellOnlyWeakens(t *testing.T) {
	m := captureModel()
	Capture(m, "a", 2, 2, true)
	require.Equal(t, 20, m.At(2, 2).Strength)

	outcome := Capture(m, "b", 2, 2, false)
	assert.Equal(t, CaptureWeakened, outcome)
	assert.True(t, outcome.Applied())
	assert.Equal(t, "a", m.At(2, 2).Owner)
	assert.Equal(t, 5, m.At(2, 2).Strength)
	assert.Equal(t, 0, m.Players["b"].Score)
	assert.Zero(t, m.Players["b"].Territories.Size())
	requireInvariants(t, m)
}

func TestCaptureInitialAttackAlwaysWins(t *testing.T) {
	m := captureModel()
	Capture(m, "a", 3, 3, false)
	for i := 0; i < 10; i++ {
		Capture(m, "a", 3, 3, false)
	}
	require.Equal(t, MaxStrength, m.At(3, 3).Strength)

	require.Equal(t, CaptureTaken, Capture(m, "b", 3, 3, true))
	assert.Equal(t, "b", m.At(3, 3).Owner)
	assert.Equal(t, InitialStrength, m.At(3, 3).Strength)
	requireInvariants(t, m)
}

func TestCaptureReinforceIsCapped(t *testing.T) {
	m := captureModel()
	Capture(m, "a", 0, 0, false)
	for i := 0; i < 20; i++ {
		require.Equal(t, CaptureReinforced, Capture(m, "a", 0, 0, false))
		require.LessOrEqual(t, m.At(0, 0).Strength, MaxStrength)
	}
	assert.Equal(t, MaxStrength, m.At(0, 0).Strength)
	assert.Equal(t, 5, m.Players["a"].Score, "reinforcing scores nothing")
}

func TestCaptureCollectsResource(t *testing.T) {
	m := captureModel()
	require.True(t, m.PlaceResource(1, 2, ResourceValue))
	before := m.Players["a"].ResourceCount

	require.Equal(t, CaptureClaimed, Capture(m, "a", 1, 2, false))
	assert.Equal(t, 30, m.Players["a"].Score)
	assert.Equal(t, before+50, m.Players["a"].ResourceCount)
	assert.False(t, m.At(1, 2).HasResource)
	assert.Empty(t, m.Resources)
	requireInvariants(t, m)
}

func TestCaptureRejects(t *testing.T) {
	m := captureModel()
	assert.Equal(t, CaptureNone, Capture(m, "nobody", 1, 1, false))
	assert.Equal(t, CaptureNone, Capture(m, "a", 6, 1, false))
	assert.Equal(t, CaptureNone, Capture(m, "a", -1, 1, false))
	assert.False(t, CaptureNone.Applied())

	m.Phase = model.PhaseEnded
	assert.Equal(t, CaptureNone, Capture(m, "a", 1, 1, false))
	assert.Equal(t, "", m.At(1, 1).Owner)
}
