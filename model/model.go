package model

import "github.com/zyedidia/generic/mapset"

type Point struct {
	X, Y int
}

type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseRunning
	PhaseEnded
)

type Resource struct {
	X, Y  int
	Value int
}

// Cell is one grid square. Owner is empty for an unowned cell.
type Cell struct {
	Owner       string
	Strength    int
	HasResource bool
}

type Player struct {
	Id            string
	Name          string
	Color         string
	Seat          int
	ResourceCount int
	Territories   mapset.Set[Point]
	Connected     bool
	Score         int
	IsAI          bool
	StartPosition Point
}

// Model is the full state of one match. Matrix is indexed [row][col].
type Model struct {
	Cols, Rows int
	Matrix     [][]*Cell
	Resources  []Resource
	Players    map[string]*Player
	PlayerKeys []string
	Timer      int
	Phase      Phase
}
