package server

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// handleJoin adds the client's player to the arena
func (c *Client) handleJoin(data json.RawMessage) {
	if c.PlayerID() != "" {
		c.sendError("Already joined")
		return
	}

	var joinData JoinData
	if err := json.Unmarshal(data, &joinData); err != nil {
		c.sendError("Invalid join data")
		return
	}

	name := sanitizeName(joinData.Name)
	if name == "" {
		name = fmt.Sprintf("Player%d", rand.Intn(1000))
	}

	c.server.worldMu.Lock()
	p := c.server.world.AddPlayer(name)
	c.server.worldMu.Unlock()

	c.setPlayerID(p.ID)
	c.sendMsg(ServerMessage{Type: MsgTypeJoined, Data: p})
}

// handleMove applies a position report
func (c *Client) handleMove(data json.RawMessage) {
	id := c.PlayerID()
	if id == "" {
		c.sendError("Not joined")
		return
	}

	var moveData MoveData
	if err := json.Unmarshal(data, &moveData); err != nil {
		c.sendError("Invalid move data")
		return
	}

	c.server.worldMu.Lock()
	_, err := c.server.world.MovePlayer(id, moveData.X, moveData.Y)
	c.server.worldMu.Unlock()
	if err != nil && !errors.Is(err, ErrPlayerDead) {
		c.sendError(err.Error())
	}
}

// handleHit routes a reported hit to the struck NPC
func (c *Client) handleHit(data json.RawMessage) {
	id := c.PlayerID()
	if id == "" {
		c.sendError("Not joined")
		return
	}

	var hitData HitData
	if err := json.Unmarshal(data, &hitData); err != nil {
		c.sendError("Invalid hit data")
		return
	}

	c.server.worldMu.Lock()
	res, err := c.server.world.ApplyHit(id, hitData.Target, hitData.Damage)
	c.server.worldMu.Unlock()
	if err != nil {
		log.Debug("hit rejected", "player", id, "target", hitData.Target, "err", err)
		c.sendError(err.Error())
		return
	}
	c.sendMsg(ServerMessage{Type: MsgTypeHit, Data: res})
}

// handleDifficulty changes a combat agent's difficulty
func (c *Client) handleDifficulty(data json.RawMessage) {
	if c.PlayerID() == "" {
		c.sendError("Not joined")
		return
	}

	var diffData DifficultyData
	if err := json.Unmarshal(data, &diffData); err != nil {
		c.sendError("Invalid difficulty data")
		return
	}

	c.server.worldMu.Lock()
	defer c.server.worldMu.Unlock()
	a, err := c.server.world.SetAgentDifficulty(diffData.Agent, diffData.Label)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendMsg(ServerMessage{Type: MsgTypeDifficulty, Data: combatView(a)})
}

// handleQuit removes the player but keeps the connection open
func (c *Client) handleQuit() {
	id := c.PlayerID()
	if id == "" {
		return
	}
	c.server.worldMu.Lock()
	c.server.world.RemovePlayer(id)
	c.server.worldMu.Unlock()
	c.setPlayerID("")
}
