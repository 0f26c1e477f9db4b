package server

import "github.com/zucenko/territory/model"

const (
	ClaimStrength   = 10
	InitialStrength = 20
	ReinforceStep   = 5
	MaxStrength     = 50

	AttackPower        = 15
	InitialAttackPower = 100

	ClaimScore    = 5
	CaptureScore  = 10
	ResourceScore = 25
)

// Capture resolves playerId acting on (x,y). It does not check adjacency or
// connection state; callers validate moves before getting here. Ownership
// and both players' territory sets change together.
func Capture(m *model.Model, playerId string, x, y int, initial bool) CaptureOutcome {
	if m.Phase == model.PhaseEnded {
		return CaptureNone
	}
	cell := m.At(x, y)
	if cell == nil {
		return CaptureNone
	}
	player, found := m.Players[playerId]
	if !found {
		return CaptureNone
	}

	switch cell.Owner {
	case "":
		occupy(player, cell, x, y, initial)
		player.Score += ClaimScore
		collect(m, player, x, y)
		return CaptureClaimed
	case playerId:
		cell.Strength = min(cell.Strength+ReinforceStep, MaxStrength)
		return CaptureReinforced
	}

	power := AttackPower
	if initial {
		power = InitialAttackPower
	}
	cell.Strength -= power
	if cell.Strength > 0 {
		return CaptureWeakened
	}

	if previous, found := m.Players[cell.Owner]; found {
		previous.Territories.Remove(model.Point{X: x, Y: y})
	}
	cell.Owner = ""
	cell.Strength = 0
	occupy(player, cell, x, y, initial)
	player.Score += CaptureScore
	collect(m, player, x, y)
	return CaptureTaken
}

func occupy(p *model.Player, cell *model.Cell, x, y int, initial bool) {
	cell.Owner = p.Id
	cell.Strength = ClaimStrength
	if initial {
		cell.Strength = InitialStrength
	}
	p.Territories.Put(model.Point{X: x, Y: y})
}

func collect(m *model.Model, p *model.Player, x, y int) {
	res, found := m.TakeResource(x, y)
	if !found {
		return
	}
	p.ResourceCount += res.Value
	p.Score += ResourceScore
}
