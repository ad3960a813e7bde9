package server

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/lab1702/arena-npc/ai"
	"github.com/lab1702/arena-npc/game"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the per-tick state streamed to clients.
type Snapshot struct {
	Frame   int64             `json:"frame" msgpack:"frame"`
	Time    float64           `json:"time" msgpack:"time"` // simulation seconds
	Players []game.Player     `json:"players" msgpack:"players"`
	Agents  []CombatAgentView `json:"agents" msgpack:"agents"`
	Swarms  []SwarmAgentView  `json:"swarms" msgpack:"swarms"`
	Bases   []BaseView        `json:"bases" msgpack:"bases"`
	Shots   []ShotEvent       `json:"shots" msgpack:"shots"`
	Melee   []MeleeEvent      `json:"melee" msgpack:"melee"`
}

type CombatAgentView struct {
	ID         string          `json:"id" msgpack:"id"`
	Name       string          `json:"name" msgpack:"name"`
	X          float64         `json:"x" msgpack:"x"`
	Y          float64         `json:"y" msgpack:"y"`
	Angle      float64         `json:"angle" msgpack:"angle"`
	Health     float64         `json:"health" msgpack:"health"`
	MaxHealth  float64         `json:"maxHealth" msgpack:"maxHealth"`
	Difficulty game.Difficulty `json:"difficulty" msgpack:"difficulty"`
	Behavior   string          `json:"behavior" msgpack:"behavior"`
}

type SwarmAgentView struct {
	ID      string  `json:"id" msgpack:"id"`
	BaseID  string  `json:"baseId,omitempty" msgpack:"baseId,omitempty"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Radius  float64 `json:"radius" msgpack:"radius"`
	Rushing bool    `json:"rushing" msgpack:"rushing"`
}

type BaseView struct {
	ID         string          `json:"id" msgpack:"id"`
	X          float64         `json:"x" msgpack:"x"`
	Y          float64         `json:"y" msgpack:"y"`
	Radius     float64         `json:"radius" msgpack:"radius"`
	Health     float64         `json:"health" msgpack:"health"`
	MaxHealth  float64         `json:"maxHealth" msgpack:"maxHealth"`
	Difficulty game.Difficulty `json:"difficulty" msgpack:"difficulty"`
	Destroyed  bool            `json:"destroyed" msgpack:"destroyed"`
	Spawned    int             `json:"spawned" msgpack:"spawned"`
}

// AgentDetail is the HTTP view of one combat agent.
type AgentDetail struct {
	CombatAgentView
	VX       float64                `json:"vx"`
	VY       float64                `json:"vy"`
	TargetID string                 `json:"targetId,omitempty"`
	Maneuver string                 `json:"maneuver,omitempty"`
	Path     []game.Point           `json:"path"`
	Tree     string                 `json:"tree"`
	Profile  game.DifficultyProfile `json:"profile"`
}

// ArenaSummary is the HTTP overview of the arena.
type ArenaSummary struct {
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	Frame        int64       `json:"frame"`
	Time         float64     `json:"time"`
	Players      int         `json:"players"`
	CombatAgents int         `json:"combatAgents"`
	SwarmAgents  int         `json:"swarmAgents"`
	Bases        int         `json:"bases"`
	Walls        []game.Wall `json:"walls"`
}

func combatView(a *ai.CombatAgent) CombatAgentView {
	return CombatAgentView{
		ID:         a.ID,
		Name:       a.Name,
		X:          a.X,
		Y:          a.Y,
		Angle:      a.Angle,
		Health:     a.Health,
		MaxHealth:  a.MaxHealth,
		Difficulty: a.Difficulty,
		Behavior:   a.Behavior,
	}
}

func baseView(b *ai.SwarmBase) BaseView {
	return BaseView{
		ID:         b.ID,
		X:          b.X,
		Y:          b.Y,
		Radius:     b.Radius,
		Health:     b.Health,
		MaxHealth:  b.MaxHealth,
		Difficulty: b.Difficulty,
		Destroyed:  b.IsDestroyed(),
		Spawned:    b.SpawnedCount(),
	}
}

// Snapshot captures the current state plus the events of the last step.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{
		Frame:   w.frame,
		Time:    w.now.Seconds(),
		Players: w.playersSorted(),
		Agents:  make([]CombatAgentView, 0, len(w.combat)),
		Swarms:  make([]SwarmAgentView, 0, len(w.swarms)),
		Bases:   w.Bases(),
		Shots:   w.last.Shots,
		Melee:   w.last.Melee,
	}
	for _, a := range w.combat {
		snap.Agents = append(snap.Agents, combatView(a))
	}
	for _, s := range w.swarms {
		snap.Swarms = append(snap.Swarms, SwarmAgentView{
			ID:      s.ID,
			BaseID:  s.BaseID,
			X:       s.X,
			Y:       s.Y,
			Radius:  s.Radius,
			Rushing: s.Rushing(),
		})
	}
	return snap
}

// Bases lists every base, destroyed ones included.
func (w *World) Bases() []BaseView {
	out := make([]BaseView, 0, len(w.bases))
	for _, b := range w.bases {
		out = append(out, baseView(b))
	}
	return out
}

// AgentDetail describes a living combat agent.
func (w *World) AgentDetail(id string) (AgentDetail, bool) {
	a, ok := w.CombatAgent(id)
	if !ok {
		return AgentDetail{}, false
	}
	return AgentDetail{
		CombatAgentView: combatView(a),
		VX:              a.VX,
		VY:              a.VY,
		TargetID:        a.TargetID,
		Maneuver:        a.Maneuver,
		Path:            a.Path(),
		Tree:            a.TreeDescription(),
		Profile:         a.Profile(),
	}, true
}

// Summary reports counts and the wall layout.
func (w *World) Summary() ArenaSummary {
	return ArenaSummary{
		Width:        w.Width,
		Height:       w.Height,
		Frame:        w.frame,
		Time:         w.now.Seconds(),
		Players:      len(w.players),
		CombatAgents: len(w.combat),
		SwarmAgents:  len(w.swarms),
		Bases:        len(w.bases),
		Walls:        w.Walls(),
	}
}

// Codec selects the websocket wire encoding.
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

// ParseCodec maps a query value to a codec, defaulting to JSON.
func ParseCodec(v string) Codec {
	if Codec(v) == CodecMsgpack {
		return CodecMsgpack
	}
	return CodecJSON
}

// Encode marshals a server message for the wire.
func (c Codec) Encode(msg ServerMessage) ([]byte, error) {
	if c == CodecMsgpack {
		return msgpack.Marshal(msg)
	}
	return json.Marshal(msg)
}

// SnapshotSchema is the JSON Schema of Snapshot.
func SnapshotSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Snapshot{})
}
