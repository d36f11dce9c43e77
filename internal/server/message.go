package server

import (
	"encoding/json"
	"time"

	"github.com/wordroyale/wordroyale/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type RegisterAliasData struct {
	RoomCode string `json:"roomCode"`
	Alias    string `json:"alias"`
}

type WatchRoomData struct {
	RoomCode string `json:"roomCode"`
	Admin    bool   `json:"admin,omitempty"`
}

type ToggleReadyData struct {
	Ready bool `json:"ready"`
}

type PlayGuessData struct {
	Guess       string `json:"guess"`
	GuessNumber int    `json:"guessNumber"`
}

type SendChatData struct {
	Message string `json:"message"`
}

type KickPlayerData struct {
	Alias string `json:"alias"`
}

type DisconnectPlayerData struct {
	Alias string `json:"alias"`
}

type UpdateGuessTimeLimitData struct {
	Seconds float64 `json:"seconds"`
}

type UpdateMaxGuessesData struct {
	MaxGuesses int `json:"maxGuesses"`
}

type UpdateAnswerListData struct {
	ListType string `json:"listType"`
}

type AddBotData struct {
	Personality string `json:"personality,omitempty"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomCreatedData struct {
	RoomCode string `json:"roomCode"`
}

type RoomSummary struct {
	Code        string           `json:"code"`
	PlayerCount int              `json:"playerCount"`
	BotCount    int              `json:"botCount"`
	Status      game.RoundStatus `json:"status"`
	RoundNumber int              `json:"roundNumber"`
}

type RoomListData struct {
	Rooms []RoomSummary `json:"rooms"`
}

type AliasRegisteredData struct {
	RoomCode string       `json:"roomCode"`
	Player   *game.Player `json:"player"`
	IsAdmin  bool         `json:"isAdmin"`
}

// RoundStateData carries either the full or the masked state. Exactly one
// of the two fields is set depending on the audience.
type RoundStateData struct {
	State       *game.RoundState       `json:"state,omitempty"`
	MaskedState *game.MaskedRoundState `json:"maskedState,omitempty"`
}

type BoardUpdatedData struct {
	Alias string      `json:"alias"`
	Board *game.Board `json:"board"`
}

type ParametersData struct {
	Parameters game.Parameters `json:"parameters"`
}

type SuggestedGuessData struct {
	Word string `json:"word,omitempty"`
}

type PointScheduleData struct {
	Schedule *game.PointSchedule `json:"schedule"`
}

type ChatMessage struct {
	Alias   string    `json:"alias"`
	Message string    `json:"message"`
	IsBot   bool      `json:"isBot"`
	SentAt  time.Time `json:"sentAt"`
}

type ChatHistoryData struct {
	Messages []ChatMessage `json:"messages"`
}

type TypingData struct {
	Alias string `json:"alias"`
}

type KickedData struct {
	Reason string `json:"reason"`
}
