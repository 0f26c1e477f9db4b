package server

import (
	"math/rand"

	"github.com/zucenko/territory/model"
	"github.com/zyedidia/generic/mapset"
)

const (
	aiWeakEnemyStrength = 15
	aiReinforceBelow    = 30
)

// aiTurn lets an AI seat act on this tick. It skips some ticks on purpose
// and otherwise submits one move through the regular move validation.
func (r *Room) aiTurn(p *model.Player) {
	if r.rng.Float64() >= AIMoveChance {
		return
	}
	target, found := chooseTarget(r.Model, p, r.rng)
	if !found {
		return
	}
	r.applyMove(p.Id, target.X, target.Y)
}

// chooseTarget picks uniformly from the first non-empty tier: resources,
// weak enemy cells, unowned cells, own cells needing reinforcement, then
// anything reachable.
func chooseTarget(m *model.Model, p *model.Player, rng *rand.Rand) (model.Point, bool) {
	candidates := frontier(m, p)
	if len(candidates) == 0 {
		return model.Point{}, false
	}

	var tiers [5][]model.Point
	for _, pt := range candidates {
		cell := m.At(pt.X, pt.Y)
		if cell.HasResource {
			tiers[0] = append(tiers[0], pt)
		}
		if cell.Owner != "" && cell.Owner != p.Id && cell.Strength <= aiWeakEnemyStrength {
			tiers[1] = append(tiers[1], pt)
		}
		if cell.Owner == "" {
			tiers[2] = append(tiers[2], pt)
		}
		if cell.Owner == p.Id && cell.Strength < aiReinforceBelow {
			tiers[3] = append(tiers[3], pt)
		}
	}
	tiers[4] = candidates

	for _, tier := range tiers {
		if len(tier) > 0 {
			return tier[rng.Intn(len(tier))], true
		}
	}
	return model.Point{}, false
}

// frontier lists every in-grid cell orthogonally adjacent to a cell p owns,
// once each, in row-major order.
func frontier(m *model.Model, p *model.Player) []model.Point {
	seen := mapset.New[model.Point]()
	out := make([]model.Point, 0)
	for _, owned := range p.TerritoryList() {
		for _, n := range m.Neighbors(owned) {
			if seen.Has(n) {
				continue
			}
			seen.Put(n)
			out = append(out, n)
		}
	}
	model.SortPoints(out)
	return out
}
