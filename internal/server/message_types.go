package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeCreateRoom          MessageType = "create_room"
	MessageTypeListRooms           MessageType = "list_rooms"
	MessageTypeRegisterAlias       MessageType = "register_alias"
	MessageTypeWatchRoom           MessageType = "watch_room"
	MessageTypeToggleReady         MessageType = "toggle_ready"
	MessageTypeVoteToStart         MessageType = "vote_to_start"
	MessageTypePlayGuess           MessageType = "play_guess"
	MessageTypeGiveUp              MessageType = "give_up"
	MessageTypeSuggestGuess        MessageType = "suggest_guess"
	MessageTypeRevealAbsentLetter  MessageType = "reveal_absent_letter"
	MessageTypeRevealPresentLetter MessageType = "reveal_present_letter"
	MessageTypeLogOut              MessageType = "log_out"
	MessageTypeSendChat            MessageType = "send_chat"
	MessageTypeTyping              MessageType = "typing"
	MessageTypeStopTyping          MessageType = "stop_typing"
	MessageTypeNextRound           MessageType = "next_round"
	MessageTypeGetRoundState       MessageType = "get_round_state"
	MessageTypeGetBoard            MessageType = "get_board"
	MessageTypeGetParameters       MessageType = "get_parameters"
	MessageTypeGetPointSchedule    MessageType = "get_point_schedule"
	MessageTypeGetChatHistory      MessageType = "get_chat_history"

	// Admin-gated client to server messages
	MessageTypeKickPlayer           MessageType = "kick_player"
	MessageTypeDisconnectPlayer     MessageType = "disconnect_player"
	MessageTypeHardResetAll         MessageType = "hard_reset_all"
	MessageTypeUpdateGuessTimeLimit MessageType = "update_guess_time_limit"
	MessageTypeUpdateMaxGuesses     MessageType = "update_max_guesses"
	MessageTypeUpdateAnswerList     MessageType = "update_answer_list"
	MessageTypeAddBot               MessageType = "add_bot"

	// Server to client messages
	MessageTypeError               MessageType = "error"
	MessageTypeRoomCreated         MessageType = "room_created"
	MessageTypeRoomList            MessageType = "room_list"
	MessageTypeRoomListUpdated     MessageType = "room_list_updated"
	MessageTypeAliasRegistered     MessageType = "alias_registered"
	MessageTypeRoundStateUpdated   MessageType = "round_state_updated"
	MessageTypeBoardUpdated        MessageType = "board_updated"
	MessageTypeNewRoundStarted     MessageType = "new_round_started"
	MessageTypeParametersUpdated   MessageType = "parameters_updated"
	MessageTypeSuggestedGuess      MessageType = "suggested_guess"
	MessageTypePointSchedule       MessageType = "point_schedule"
	MessageTypeChatMessage         MessageType = "chat_message"
	MessageTypeChatHistory         MessageType = "chat_history"
	MessageTypePlayerTyping        MessageType = "player_typing"
	MessageTypePlayerStoppedTyping MessageType = "player_stopped_typing"
	MessageTypeKicked              MessageType = "kicked"
	MessageTypeLoggedOut           MessageType = "logged_out"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
