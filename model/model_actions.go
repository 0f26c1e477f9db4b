package model

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Cardinal neighbour offsets: right, down, left, up.
var Directions = [4]Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

func NewEmptyModel(cols, rows int) *Model {
	matrix := make([][]*Cell, 0, rows)
	for r := 0; r < rows; r++ {
		row := make([]*Cell, 0, cols)
		for c := 0; c < cols; c++ {
			row = append(row, &Cell{})
		}
		matrix = append(matrix, row)
	}
	return &Model{
		Cols:       cols,
		Rows:       rows,
		Matrix:     matrix,
		Resources:  make([]Resource, 0),
		Players:    make(map[string]*Player),
		PlayerKeys: make([]string, 0),
	}
}

func NewPlayer(id, name string, isAI bool) *Player {
	return &Player{
		Id:          id,
		Name:        name,
		IsAI:        isAI,
		Connected:   true,
		Territories: mapset.New[Point](),
	}
}

// AddPlayer seats p after the existing players. Seat is set from the
// insertion order.
func (m *Model) AddPlayer(p *Player) {
	p.Seat = len(m.PlayerKeys)
	m.Players[p.Id] = p
	m.PlayerKeys = append(m.PlayerKeys, p.Id)
}

// Seated returns players in seat order.
func (m *Model) Seated() []*Player {
	players := make([]*Player, 0, len(m.PlayerKeys))
	for _, id := range m.PlayerKeys {
		players = append(players, m.Players[id])
	}
	return players
}

func (m *Model) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Cols && y < m.Rows
}

// At returns nil outside the grid.
func (m *Model) At(x, y int) *Cell {
	if !m.InBounds(x, y) {
		return nil
	}
	return m.Matrix[y][x]
}

// Neighbors returns the in-grid orthogonal neighbours of p.
func (m *Model) Neighbors(p Point) []Point {
	out := make([]Point, 0, 4)
	for _, d := range Directions {
		n := Point{p.X + d.X, p.Y + d.Y}
		if m.InBounds(n.X, n.Y) {
			out = append(out, n)
		}
	}
	return out
}

// Borders reports whether (x,y) is orthogonally adjacent to any territory
// of p. Diagonal contact does not count.
func (p *Player) Borders(x, y int) bool {
	for _, d := range Directions {
		if p.Territories.Has(Point{x + d.X, y + d.Y}) {
			return true
		}
	}
	return false
}

// TerritoryList returns the player's cells ordered by row then column.
func (p *Player) TerritoryList() []Point {
	list := make([]Point, 0, p.Territories.Size())
	p.Territories.Each(func(pt Point) {
		list = append(list, pt)
	})
	SortPoints(list)
	return list
}

func SortPoints(list []Point) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Y != list[j].Y {
			return list[i].Y < list[j].Y
		}
		return list[i].X < list[j].X
	})
}

// PlaceResource puts a resource on an unowned, resource-free cell.
func (m *Model) PlaceResource(x, y, value int) bool {
	cell := m.At(x, y)
	if cell == nil || cell.Owner != "" || cell.HasResource {
		return false
	}
	cell.HasResource = true
	m.Resources = append(m.Resources, Resource{X: x, Y: y, Value: value})
	return true
}

// TakeResource clears the resource at (x,y), keeping the cell flag and the
// resource list in step.
func (m *Model) TakeResource(x, y int) (Resource, bool) {
	cell := m.At(x, y)
	if cell == nil || !cell.HasResource {
		return Resource{}, false
	}
	cell.HasResource = false
	for i, r := range m.Resources {
		if r.X == x && r.Y == y {
			m.Resources = append(m.Resources[:i], m.Resources[i+1:]...)
			return r, true
		}
	}
	return Resource{}, false
}

func (m *Model) TotalTerritories() int {
	total := 0
	for _, p := range m.Players {
		total += p.Territories.Size()
	}
	return total
}

func (ph Phase) String() string {
	switch ph {
	case PhaseInitializing:
		return "initializing"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

func (ph Phase) MarshalText() ([]byte, error) {
	return []byte(ph.String()), nil
}

func (ph *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "initializing":
		*ph = PhaseInitializing
	case "running":
		*ph = PhaseRunning
	case "ended":
		*ph = PhaseEnded
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}
