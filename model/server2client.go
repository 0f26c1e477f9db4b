package model

import "encoding/json"

// Outbound event types.
const (
	EventConnected         = "connected"
	EventMatchmakingStatus = "matchmakingStatus"
	EventMatchFound        = "matchFound"
	EventGameStarted       = "gameStarted"
	EventGameState         = "gameState"
	EventChatMessage       = "chatMessage"
	EventGameOver          = "gameOver"
	EventReconnected       = "reconnected"
)

// Inbound intent types.
const (
	IntentFindMatch        = "findMatch"
	IntentPlaySolo         = "playSolo"
	IntentLeaveMatchmaking = "leaveMatchmaking"
	IntentPlayerMove       = "playerMove"
	IntentChatMessage      = "chatMessage"
	IntentReconnect        = "reconnect"
)

type ServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Connected is sent only to the new connection. SessionId is the private
// token for reconnect; PlayerId is how the seat shows up in fullState.
type Connected struct {
	SessionId string `json:"sessionId"`
	PlayerId  string `json:"playerId"`
}

type MatchmakingStatus struct {
	Message        string `json:"message"`
	PlayersInQueue int    `json:"playersInQueue"`
}

type MovePayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type PlayerState struct {
	Id            string  `json:"id"`
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	ResourceCount int     `json:"resourceCount"`
	Territories   []Coord `json:"territories"`
	Connected     bool    `json:"connected"`
	Score         int     `json:"score"`
	IsAI          bool    `json:"isAI"`
}

type CellState struct {
	OwnerId     *string `json:"ownerId"`
	Strength    int     `json:"strength"`
	HasResource bool    `json:"hasResource"`
}

type ResourceState struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Value int `json:"value"`
}

type FullState struct {
	Players   []PlayerState   `json:"players"`
	Grid      [][]CellState   `json:"grid"`
	Resources []ResourceState `json:"resources"`
	Timer     int             `json:"timer"`
	Phase     Phase           `json:"phase"`
}

type ChatMessage struct {
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Color      string `json:"color"`
	Timestamp  int64  `json:"timestamp"`
}

type LeaderboardEntry struct {
	Id            string `json:"id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	Score         int    `json:"score"`
	Territories   int    `json:"territories"`
	ResourceCount int    `json:"resourceCount"`
	FinalScore    int    `json:"finalScore"`
	IsAI          bool   `json:"isAI"`
}

type FinalStats struct {
	TotalTurns         int `json:"totalTurns"`
	ResourcesRemaining int `json:"resourcesRemaining"`
	TotalTerritories   int `json:"totalTerritories"`
}

type GameOver struct {
	Winner      LeaderboardEntry   `json:"winner"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	FinalStats  FinalStats         `json:"finalStats"`
}

// Snapshot renders the model in its wire form.
func (m *Model) Snapshot() FullState {
	players := make([]PlayerState, 0, len(m.PlayerKeys))
	for _, p := range m.Seated() {
		territories := make([]Coord, 0, p.Territories.Size())
		for _, pt := range p.TerritoryList() {
			territories = append(territories, Coord{X: pt.X, Y: pt.Y})
		}
		players = append(players, PlayerState{
			Id:            p.Id,
			Name:          p.Name,
			Color:         p.Color,
			ResourceCount: p.ResourceCount,
			Territories:   territories,
			Connected:     p.Connected,
			Score:         p.Score,
			IsAI:          p.IsAI,
		})
	}

	grid := make([][]CellState, 0, m.Rows)
	for _, row := range m.Matrix {
		cells := make([]CellState, 0, len(row))
		for _, c := range row {
			cs := CellState{Strength: c.Strength, HasResource: c.HasResource}
			if c.Owner != "" {
				owner := c.Owner
				cs.OwnerId = &owner
			}
			cells = append(cells, cs)
		}
		grid = append(grid, cells)
	}

	resources := make([]ResourceState, 0, len(m.Resources))
	for _, r := range m.Resources {
		resources = append(resources, ResourceState{X: r.X, Y: r.Y, Value: r.Value})
	}

	return FullState{
		Players:   players,
		Grid:      grid,
		Resources: resources,
		Timer:     m.Timer,
		Phase:     m.Phase,
	}
}
