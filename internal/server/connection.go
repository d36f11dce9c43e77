package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	id       string
	conn     *websocket.Conn
	send     chan *Message
	registry *Registry
	logger   *log.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	mu        sync.RWMutex
	room      *Room
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, registry *Registry, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Connection{
		id:       id,
		conn:     conn,
		send:     make(chan *Message, 256),
		registry: registry,
		logger:   logger.WithPrefix("conn").With("id", id[:8]),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string { return c.id }

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
		if room := c.Room(); room != nil {
			room.Unsubscribe(c.id)
		}
	})
	return err
}

// Send queues a message for the client, dropping the connection if its
// buffer is full.
func (c *Connection) Send(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
	}
}

// Room returns the room this connection is attached to, if any.
func (c *Connection) Room() *Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Connection) setRoom(room *Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = room
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeCreateRoom:
		c.handleCreateRoom()
	case MessageTypeListRooms:
		c.reply(MessageTypeRoomList, RoomListData{Rooms: c.registry.Summaries()})
	case MessageTypeRegisterAlias:
		var data RegisterAliasData
		if !c.decode(msg, &data) {
			return
		}
		c.handleRegisterAlias(data)
	case MessageTypeWatchRoom:
		var data WatchRoomData
		if !c.decode(msg, &data) {
			return
		}
		c.handleWatchRoom(data)
	case MessageTypeToggleReady:
		var data ToggleReadyData
		if !c.decode(msg, &data) {
			return
		}
		c.inRoom(func(room *Room) error { return room.ToggleReady(c.id, data.Ready) })
	case MessageTypeVoteToStart:
		c.inRoom(func(room *Room) error { return room.VoteToStart(c.id) })
	case MessageTypePlayGuess:
		var data PlayGuessData
		if !c.decode(msg, &data) {
			return
		}
		c.inRoom(func(room *Room) error { return room.PlayGuess(c.id, data.Guess, data.GuessNumber) })
	case MessageTypeGiveUp:
		c.inRoom(func(room *Room) error { return room.GiveUp(c.id) })
	case MessageTypeSuggestGuess:
		c.inRoom(func(room *Room) error { return room.SuggestGuess(c.id) })
	case MessageTypeRevealAbsentLetter:
		c.inRoom(func(room *Room) error { return room.RevealAbsentLetter(c.id) })
	case MessageTypeRevealPresentLetter:
		c.inRoom(func(room *Room) error { return room.RevealPresentLetter(c.id) })
	case MessageTypeLogOut:
		c.inRoom(func(room *Room) error { return room.LogOut(c.id) })
	case MessageTypeSendChat:
		var data SendChatData
		if !c.decode(msg, &data) {
			return
		}
		c.inRoom(func(room *Room) error { return room.SendChat(c.id, data.Message) })
	case MessageTypeTyping:
		c.inRoom(func(room *Room) error { return room.Typing(c.id, false) })
	case MessageTypeStopTyping:
		c.inRoom(func(room *Room) error { return room.Typing(c.id, true) })
	case MessageTypeNextRound:
		c.inRoom(func(room *Room) error { return room.NextRound(c.id) })
	case MessageTypeKickPlayer:
		var data KickPlayerData
		if !c.decode(msg, &data) {
			return
		}
		c.inRoom(func(room *Room) error { return room.KickPlayer(c.id, data.Alias) })
	case MessageTypeDisconnectPlayer:
		var data DisconnectPlayerData
		if !c.decode(msg, &data) {
			return
		}
		c.inRoom(func(room *Room) error { return room.DisconnectPlayer(c.id, data.Alias) })
	case MessageTypeHardResetAll:
		c.inRoom(func(room *Room) error { return room.HardResetAll(c.id) })
	case MessageTypeUpdateGuessTimeLimit:
		var data UpdateGuessTimeLimitData
		if !c.decode(msg, &data) {
			return
		}
		c.inRoom(func(room *Room) error { return room.UpdateGuessTimeLimit(c.id, data.Seconds) })
	case MessageTypeUpdateMaxGuesses:
		var data UpdateMaxGuessesData
		if !c.decode(msg, &data) {
			return
		}
		c.inRoom(func(room *Room) error { return room.UpdateMaxGuesses(c.id, data.MaxGuesses) })
	case MessageTypeUpdateAnswerList:
		var data UpdateAnswerListData
		if !c.decode(msg, &data) {
			return
		}
		c.inRoom(func(room *Room) error { return room.UpdateAnswerList(c.id, data.ListType) })
	case MessageTypeAddBot:
		var data AddBotData
		if !c.decode(msg, &data) {
			return
		}
		c.inRoom(func(room *Room) error { return room.AddBot(c.id, data.Personality) })
	case MessageTypeGetRoundState:
		c.inRoom(func(room *Room) error {
			c.reply(MessageTypeRoundStateUpdated, RoundStateData{MaskedState: room.MaskedState()})
			return nil
		})
	case MessageTypeGetBoard:
		c.inRoom(func(room *Room) error {
			board, err := room.PlayerBoard(c.id)
			if err != nil {
				return err
			}
			c.reply(MessageTypeBoardUpdated, BoardUpdatedData{Board: board})
			return nil
		})
	case MessageTypeGetParameters:
		c.inRoom(func(room *Room) error {
			c.reply(MessageTypeParametersUpdated, ParametersData{Parameters: room.Parameters()})
			return nil
		})
	case MessageTypeGetPointSchedule:
		c.inRoom(func(room *Room) error {
			c.reply(MessageTypePointSchedule, PointScheduleData{Schedule: room.PointSchedule()})
			return nil
		})
	case MessageTypeGetChatHistory:
		c.inRoom(func(room *Room) error {
			c.reply(MessageTypeChatHistory, ChatHistoryData{Messages: room.ChatHistory()})
			return nil
		})
	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) decode(msg *Message, dst any) bool {
	if err := json.Unmarshal(msg.Data, dst); err != nil {
		c.sendError("invalid_message", "failed to parse "+msg.Type.String()+" payload")
		return false
	}
	return true
}

// inRoom runs a handler against the attached room, translating failures
// into error messages.
func (c *Connection) inRoom(fn func(room *Room) error) {
	room := c.Room()
	if room == nil {
		c.sendError("not_in_room", "join a room first")
		return
	}
	if err := fn(room); err != nil {
		data := wireError(err)
		c.sendError(data.Code, data.Message)
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}
	c.Send(errorMsg)
}

func (c *Connection) reply(t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("failed to create reply", "type", t, "error", err)
		return
	}
	c.Send(msg)
}

func (c *Connection) handleCreateRoom() {
	room, err := c.registry.CreateRoom()
	if err != nil {
		data := wireError(err)
		c.sendError(data.Code, data.Message)
		return
	}
	c.reply(MessageTypeRoomCreated, RoomCreatedData{RoomCode: room.Code})
}

func (c *Connection) handleRegisterAlias(data RegisterAliasData) {
	room, err := c.lookupRoom(data.RoomCode)
	if err != nil {
		return
	}
	if err := room.RegisterAlias(c, data.Alias); err != nil {
		wire := wireError(err)
		c.sendError(wire.Code, wire.Message)
		return
	}
	c.setRoom(room)
}

func (c *Connection) handleWatchRoom(data WatchRoomData) {
	room, err := c.lookupRoom(data.RoomCode)
	if err != nil {
		return
	}
	room.Subscribe(c, true, data.Admin)
	c.setRoom(room)
}

// lookupRoom resolves a room code, detaching from any previous room.
func (c *Connection) lookupRoom(code string) (*Room, error) {
	room, err := c.registry.Room(code)
	if err != nil {
		wire := wireError(err)
		c.sendError(wire.Code, wire.Message)
		return nil, err
	}
	if prev := c.Room(); prev != nil && prev != room {
		prev.Unsubscribe(c.id)
	}
	return room, nil
}
