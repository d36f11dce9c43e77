package server

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/wordroyale/wordroyale/internal/bot"
	"github.com/wordroyale/wordroyale/internal/game"
	"github.com/wordroyale/wordroyale/internal/words"
)

const (
	// Countdown between the start vote succeeding and guessing opening.
	startCountdown = 5 * time.Second

	chatHistoryLimit = 200
)

// Sender delivers messages to one client connection. The concrete
// implementation is Connection; tests substitute a recorder.
type Sender interface {
	ID() string
	Send(msg *Message)
}

type subscriber struct {
	sender    Sender
	alias     string // empty for spectators and unregistered connections
	spectator bool
	elevated  bool // receives unmasked state regardless of alias
}

type roomBot struct {
	alias    string
	selector bot.Selector
}

// delivery pairs a message with its recipient. Deliveries are collected
// under the room lock and sent after it is released.
type delivery struct {
	sender Sender
	msg    *Message
}

func deliver(dels []delivery) {
	for _, d := range dels {
		if d.msg != nil {
			d.sender.Send(d.msg)
		}
	}
}

func mustMessage(t MessageType, data any) *Message {
	msg, _ := NewMessage(t, data)
	return msg
}

// Room owns one round of one game plus the connections watching it. A
// single mutex serializes every state mutation; it is never held across a
// network send.
type Room struct {
	Code string

	mu       sync.Mutex
	round    *game.RoundState
	history  []*game.RoundState
	params   game.Parameters
	schedule *game.PointSchedule
	catalog  *words.Catalog
	rng      *rand.Rand
	clock    quartz.Clock
	logger   *log.Logger

	subs        map[string]*subscriber
	adminConnID string
	bots        map[string]*roomBot
	chat        []ChatMessage

	// epoch is bumped whenever the current round object is replaced, so
	// timer callbacks armed against an older round become no-ops.
	epoch         int
	startTimer    *quartz.Timer
	deadlineTimer *quartz.Timer

	// notifyList is invoked (outside the lock) after membership or status
	// changes so the registry can refresh its room listing.
	notifyList func()
}

func newRoom(code string, params game.Parameters, schedule *game.PointSchedule, catalog *words.Catalog, rng *rand.Rand, clock quartz.Clock, logger *log.Logger) *Room {
	return &Room{
		Code:     code,
		round:    game.NewRoundState(params, schedule, catalog, rng),
		params:   params,
		schedule: schedule,
		catalog:  catalog,
		rng:      rng,
		clock:    clock,
		logger:   logger.WithPrefix("room").With("code", code),
		subs:     make(map[string]*subscriber),
		bots:     make(map[string]*roomBot),
	}
}

// Subscribe attaches a connection to the room's broadcast audience.
// Spectators never register an alias; elevated subscribers see unmasked
// state (the "tv admin" view).
func (r *Room) Subscribe(sender Sender, spectator, elevated bool) {
	r.mu.Lock()
	r.subs[sender.ID()] = &subscriber{sender: sender, spectator: spectator, elevated: elevated}
	dels := []delivery{{sender, r.stateMessageFor(r.subs[sender.ID()])}}
	r.mu.Unlock()
	deliver(dels)
}

// Unsubscribe detaches a connection, marking its player disconnected and
// reassigning admin rights if needed.
func (r *Room) Unsubscribe(connID string) {
	r.mu.Lock()
	sub, ok := r.subs[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.subs, connID)
	if sub.alias != "" {
		r.round.SetConnected(sub.alias, false)
	}
	if connID == r.adminConnID {
		r.adminConnID = r.nextAdmin()
	}
	dels := r.stateDeliveries()
	r.mu.Unlock()
	deliver(dels)
	r.roomChanged()
}

// nextAdmin picks the first remaining registered connection. Called under
// the lock.
func (r *Room) nextAdmin() string {
	for id, sub := range r.subs {
		if sub.alias != "" {
			return id
		}
	}
	return ""
}

func (r *Room) roomChanged() {
	if r.notifyList != nil {
		r.notifyList()
	}
}

// RegisterAlias claims an alias for a connection. The first registered
// connection becomes the room admin.
func (r *Room) RegisterAlias(sender Sender, alias string) error {
	r.mu.Lock()
	sub, ok := r.subs[sender.ID()]
	if !ok {
		sub = &subscriber{sender: sender}
		r.subs[sender.ID()] = sub
	}
	player, err := r.round.RegisterPlayer(alias, sender.ID(), r.clock.Now())
	if err != nil {
		r.mu.Unlock()
		return err
	}
	sub.alias = alias
	if r.adminConnID == "" {
		r.adminConnID = sender.ID()
	}
	dels := []delivery{{sender, mustMessage(MessageTypeAliasRegistered, AliasRegisteredData{
		RoomCode: r.Code,
		Player:   player,
		IsAdmin:  sender.ID() == r.adminConnID,
	})}}
	dels = append(dels, r.stateDeliveries()...)
	r.mu.Unlock()
	deliver(dels)
	r.roomChanged()
	return nil
}

func (r *Room) aliasFor(connID string) (string, error) {
	sub, ok := r.subs[connID]
	if !ok || sub.alias == "" {
		return "", game.NewValidationError(game.CodePlayerNotFound, "no alias registered for this connection")
	}
	return sub.alias, nil
}

func (r *Room) requireAdmin(connID string) error {
	sub, ok := r.subs[connID]
	if ok && sub.elevated {
		return nil
	}
	if connID != r.adminConnID || r.adminConnID == "" {
		return game.NewPermissionError("admin rights required")
	}
	return nil
}

// ToggleReady flips a player's ready flag.
func (r *Room) ToggleReady(connID string, ready bool) error {
	r.mu.Lock()
	alias, err := r.aliasFor(connID)
	if err == nil {
		err = r.round.SetReady(alias, ready)
	}
	if err != nil {
		r.mu.Unlock()
		return err
	}
	dels := r.stateDeliveries()
	r.mu.Unlock()
	deliver(dels)
	return nil
}

// VoteToStart begins the round countdown. Guessing opens when the
// countdown elapses.
func (r *Room) VoteToStart(connID string) error {
	r.mu.Lock()
	_, err := r.aliasFor(connID)
	if err == nil {
		err = r.round.Start(r.clock.Now())
	}
	if err != nil {
		r.mu.Unlock()
		return err
	}
	epoch := r.epoch
	if r.startTimer != nil {
		r.startTimer.Stop()
	}
	r.startTimer = r.clock.AfterFunc(startCountdown, func() { r.onCountdown(epoch) })
	dels := r.stateDeliveries()
	r.mu.Unlock()
	deliver(dels)
	r.roomChanged()
	return nil
}

func (r *Room) onCountdown(epoch int) {
	r.mu.Lock()
	if epoch != r.epoch || r.round.Status != game.RoundStarting {
		r.mu.Unlock()
		return
	}
	if err := r.round.BeginPlay(); err != nil {
		r.logger.Error("could not open play", "error", err)
		r.mu.Unlock()
		return
	}
	r.armDeadlineTimer()
	for alias := range r.bots {
		r.scheduleBot(alias, epoch)
	}
	dels := r.stateDeliveries()
	r.mu.Unlock()
	deliver(dels)
	r.roomChanged()
}

// PlayGuess validates and submits a guess for the calling connection's
// player.
func (r *Room) PlayGuess(connID, guess string, guessNumber int) error {
	guess = strings.ToLower(strings.TrimSpace(guess))
	r.mu.Lock()
	alias, err := r.aliasFor(connID)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if len(guess) != r.round.WordLength && r.round.WordLength > 0 {
		r.mu.Unlock()
		return game.NewValidationError(game.CodeInvalidGuess, "wrong length")
	}
	if !r.catalog.IsAccepted(guess) {
		r.mu.Unlock()
		return game.NewValidationError(game.CodeInvalidGuess, "not in word list")
	}
	board, _, err := r.round.PlayGuess(alias, guess, guessNumber, r.clock.Now())
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.armDeadlineTimer()
	dels := r.boardAndStateDeliveries(connID, alias, board)
	r.mu.Unlock()
	deliver(dels)
	return nil
}

// GiveUp fails the calling player's board.
func (r *Room) GiveUp(connID string) error {
	r.mu.Lock()
	alias, err := r.aliasFor(connID)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	board, _, err := r.round.GiveUp(alias, r.clock.Now())
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.armDeadlineTimer()
	dels := r.boardAndStateDeliveries(connID, alias, board)
	r.mu.Unlock()
	deliver(dels)
	return nil
}

// SuggestGuess buys a consistent word suggestion for the caller.
func (r *Room) SuggestGuess(connID string) error {
	r.mu.Lock()
	alias, err := r.aliasFor(connID)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	word, ok, err := r.round.SuggestGuess(alias)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	sub := r.subs[connID]
	dels := []delivery{{sub.sender, mustMessage(MessageTypeSuggestedGuess, SuggestedGuessData{Word: word})}}
	if ok {
		dels = append(dels, r.stateDeliveries()...)
	}
	r.mu.Unlock()
	deliver(dels)
	return nil
}

// RevealAbsentLetter buys a random letter known not to be in the answer.
func (r *Room) RevealAbsentLetter(connID string) error {
	return r.reveal(connID, (*game.RoundState).RevealAbsentLetter)
}

// RevealPresentLetter buys a random letter known to be in the answer.
func (r *Room) RevealPresentLetter(connID string) error {
	return r.reveal(connID, (*game.RoundState).RevealPresentLetter)
}

func (r *Room) reveal(connID string, fn func(*game.RoundState, string) (*game.Board, error)) error {
	r.mu.Lock()
	alias, err := r.aliasFor(connID)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	board, err := fn(r.round, alias)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	dels := r.boardAndStateDeliveries(connID, alias, board)
	r.mu.Unlock()
	deliver(dels)
	return nil
}

// LogOut removes the calling connection's player from the room.
func (r *Room) LogOut(connID string) error {
	r.mu.Lock()
	alias, err := r.aliasFor(connID)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if _, _, err := r.round.RemovePlayer(alias, r.clock.Now()); err != nil {
		r.mu.Unlock()
		return err
	}
	sub := r.subs[connID]
	sub.alias = ""
	if connID == r.adminConnID {
		r.adminConnID = r.nextAdmin()
	}
	r.armDeadlineTimer()
	dels := []delivery{{sub.sender, mustMessage(MessageTypeLoggedOut, struct{}{})}}
	dels = append(dels, r.stateDeliveries()...)
	r.mu.Unlock()
	deliver(dels)
	r.roomChanged()
	return nil
}

// SendChat appends to the chat log and relays to everyone. Mentioning a
// bot by alias earns a reply.
func (r *Room) SendChat(connID, text string) error {
	r.mu.Lock()
	alias, err := r.aliasFor(connID)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	dels := r.appendChat(ChatMessage{Alias: alias, Message: text, SentAt: r.clock.Now()})
	lower := strings.ToLower(text)
	for botAlias, rb := range r.bots {
		if !strings.Contains(lower, "@"+strings.ToLower(botAlias)) {
			continue
		}
		chatty, ok := rb.selector.(bot.Chatty)
		if !ok {
			continue
		}
		if line, ok := chatty.SmackTalk(); ok {
			dels = append(dels, r.appendChat(ChatMessage{Alias: botAlias, Message: line, IsBot: true, SentAt: r.clock.Now()})...)
		}
	}
	r.mu.Unlock()
	deliver(dels)
	return nil
}

// appendChat records a message and returns its broadcast deliveries.
// Called under the lock.
func (r *Room) appendChat(msg ChatMessage) []delivery {
	r.chat = append(r.chat, msg)
	if len(r.chat) > chatHistoryLimit {
		r.chat = r.chat[len(r.chat)-chatHistoryLimit:]
	}
	wire := mustMessage(MessageTypeChatMessage, msg)
	dels := make([]delivery, 0, len(r.subs))
	for _, sub := range r.subs {
		dels = append(dels, delivery{sub.sender, wire})
	}
	return dels
}

// Typing relays a typing indicator to every other connection.
func (r *Room) Typing(connID string, stopped bool) error {
	r.mu.Lock()
	alias, err := r.aliasFor(connID)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	msgType := MessageTypePlayerTyping
	if stopped {
		msgType = MessageTypePlayerStoppedTyping
	}
	wire := mustMessage(msgType, TypingData{Alias: alias})
	var dels []delivery
	for id, sub := range r.subs {
		if id != connID {
			dels = append(dels, delivery{sub.sender, wire})
		}
	}
	r.mu.Unlock()
	deliver(dels)
	return nil
}

// NextRound advances a finished round to a fresh one, archiving the old.
func (r *Room) NextRound(connID string) error {
	r.mu.Lock()
	if _, err := r.aliasFor(connID); err != nil {
		r.mu.Unlock()
		return err
	}
	if r.round.Status != game.RoundFinished {
		r.mu.Unlock()
		return game.NewStateConflictError(game.CodeInvalidState, "round is not finished")
	}
	r.history = append(r.history, r.round)
	r.replaceRound(r.round.NextRound(r.params))
	dels := []delivery{}
	for _, sub := range r.subs {
		dels = append(dels, delivery{sub.sender, mustMessage(MessageTypeNewRoundStarted, struct{}{})})
	}
	dels = append(dels, r.stateDeliveries()...)
	r.mu.Unlock()
	deliver(dels)
	r.roomChanged()
	return nil
}

// replaceRound swaps in a new round and invalidates outstanding timers.
// Called under the lock.
func (r *Room) replaceRound(next *game.RoundState) {
	r.epoch++
	if r.startTimer != nil {
		r.startTimer.Stop()
		r.startTimer = nil
	}
	if r.deadlineTimer != nil {
		r.deadlineTimer.Stop()
		r.deadlineTimer = nil
	}
	r.round = next
}

// Admin operations

// KickPlayer removes a player and notifies their connection.
func (r *Room) KickPlayer(connID, alias string) error {
	r.mu.Lock()
	if err := r.requireAdmin(connID); err != nil {
		r.mu.Unlock()
		return err
	}
	player, _, err := r.round.RemovePlayer(alias, r.clock.Now())
	if err != nil {
		r.mu.Unlock()
		return err
	}
	delete(r.bots, alias)
	var dels []delivery
	for id, sub := range r.subs {
		if sub.alias == alias {
			sub.alias = ""
			dels = append(dels, delivery{sub.sender, mustMessage(MessageTypeKicked, KickedData{Reason: "kicked by admin"})})
			if id == r.adminConnID {
				r.adminConnID = r.nextAdmin()
			}
		}
	}
	r.armDeadlineTimer()
	dels = append(dels, r.stateDeliveries()...)
	r.mu.Unlock()
	deliver(dels)
	r.roomChanged()
	r.logger.Info("player kicked", "alias", player.Alias)
	return nil
}

// DisconnectPlayer marks a player disconnected without removing them.
func (r *Room) DisconnectPlayer(connID, alias string) error {
	r.mu.Lock()
	if err := r.requireAdmin(connID); err != nil {
		r.mu.Unlock()
		return err
	}
	if _, ok := r.round.Player(alias); !ok {
		r.mu.Unlock()
		return game.NewNotFoundError(game.CodePlayerNotFound, "no player %q", alias)
	}
	r.round.SetConnected(alias, false)
	var dels []delivery
	for _, sub := range r.subs {
		if sub.alias == alias {
			dels = append(dels, delivery{sub.sender, mustMessage(MessageTypeKicked, KickedData{Reason: "disconnected by admin"})})
		}
	}
	dels = append(dels, r.stateDeliveries()...)
	r.mu.Unlock()
	deliver(dels)
	return nil
}

// HardResetAll throws away the current round and all accumulated points,
// keeping the connected players and bots.
func (r *Room) HardResetAll(connID string) error {
	r.mu.Lock()
	if err := r.requireAdmin(connID); err != nil {
		r.mu.Unlock()
		return err
	}
	fresh := game.NewRoundState(r.params, r.schedule, r.catalog, r.rng)
	now := r.clock.Now()
	for _, sub := range r.subs {
		if sub.alias != "" {
			if _, err := fresh.RegisterPlayer(sub.alias, sub.sender.ID(), now); err != nil {
				r.logger.Error("could not carry player through reset", "alias", sub.alias, "error", err)
			}
		}
	}
	for alias := range r.bots {
		if _, err := fresh.RegisterBot(alias, now); err != nil {
			r.logger.Error("could not carry bot through reset", "alias", alias, "error", err)
		}
	}
	r.history = nil
	r.replaceRound(fresh)
	dels := []delivery{}
	for _, sub := range r.subs {
		dels = append(dels, delivery{sub.sender, mustMessage(MessageTypeNewRoundStarted, struct{}{})})
	}
	dels = append(dels, r.stateDeliveries()...)
	r.mu.Unlock()
	deliver(dels)
	r.roomChanged()
	return nil
}

// UpdateGuessTimeLimit changes the per-guess deadline for future rounds.
func (r *Room) UpdateGuessTimeLimit(connID string, seconds float64) error {
	return r.updateParams(connID, func(p *game.Parameters) error {
		if seconds <= 0 {
			return game.NewValidationError(game.CodeBadParameter, "guess time limit must be positive")
		}
		p.SetGuessTimeLimit(time.Duration(seconds * float64(time.Second)))
		return nil
	})
}

// UpdateMaxGuesses changes the guess ceiling for future rounds.
func (r *Room) UpdateMaxGuesses(connID string, n int) error {
	return r.updateParams(connID, func(p *game.Parameters) error {
		if n < 1 {
			return game.NewValidationError(game.CodeBadParameter, "max guesses must be at least 1")
		}
		p.MaxGuesses = n
		return nil
	})
}

// UpdateAnswerList changes which answer pool future rounds draw from.
func (r *Room) UpdateAnswerList(connID, listType string) error {
	lt, err := words.ParseListType(listType)
	if err != nil {
		return game.NewValidationError(game.CodeBadParameter, "unknown answer list %q", listType)
	}
	return r.updateParams(connID, func(p *game.Parameters) error {
		p.AnswerList = lt
		return nil
	})
}

func (r *Room) updateParams(connID string, apply func(*game.Parameters) error) error {
	r.mu.Lock()
	if err := r.requireAdmin(connID); err != nil {
		r.mu.Unlock()
		return err
	}
	next := r.params.Clone()
	if err := apply(&next); err != nil {
		r.mu.Unlock()
		return err
	}
	if err := r.round.ApplyParameters(next); err != nil {
		r.mu.Unlock()
		return err
	}
	r.params = next
	wire := mustMessage(MessageTypeParametersUpdated, ParametersData{Parameters: r.params})
	dels := make([]delivery, 0, len(r.subs))
	for _, sub := range r.subs {
		dels = append(dels, delivery{sub.sender, wire})
	}
	r.mu.Unlock()
	deliver(dels)
	return nil
}

// AddBot seats a bot player. The personality selects the guessing
// strategy; empty means the default random bot.
func (r *Room) AddBot(connID, personality string) error {
	r.mu.Lock()
	if err := r.requireAdmin(connID); err != nil {
		r.mu.Unlock()
		return err
	}
	selector, err := bot.New(personality, r.catalog, r.rng, r.logger)
	if err != nil {
		r.mu.Unlock()
		return game.NewValidationError(game.CodeBadParameter, "%s", err.Error())
	}
	alias := bot.NextAlias(r.rng, func(name string) bool {
		_, taken := r.round.Player(name)
		return taken
	})
	if _, err := r.round.RegisterBot(alias, r.clock.Now()); err != nil {
		r.mu.Unlock()
		return err
	}
	r.bots[alias] = &roomBot{alias: alias, selector: selector}
	if r.round.Status == game.RoundPlaying {
		r.scheduleBot(alias, r.epoch)
	}
	dels := r.stateDeliveries()
	r.mu.Unlock()
	deliver(dels)
	r.roomChanged()
	r.logger.Info("bot added", "alias", alias, "personality", personality)
	return nil
}

// Bot play loop

// scheduleBot arms the bot's next move after its think delay. Called
// under the lock during Playing.
func (r *Room) scheduleBot(alias string, epoch int) {
	rb, ok := r.bots[alias]
	if !ok {
		return
	}
	player, ok := r.round.Player(alias)
	if !ok || player.Board == nil || player.Board.IsFinished() {
		return
	}
	delay := r.round.BotDelay(player.Board, rb.selector.Ability())
	r.clock.AfterFunc(delay, func() { r.botPlay(alias, epoch) })
}

func (r *Room) botPlay(alias string, epoch int) {
	r.mu.Lock()
	if epoch != r.epoch || r.round.Status != game.RoundPlaying {
		r.mu.Unlock()
		return
	}
	rb, ok := r.bots[alias]
	if !ok {
		r.mu.Unlock()
		return
	}
	player, ok := r.round.Player(alias)
	if !ok || player.Board == nil || player.Board.IsFinished() {
		r.mu.Unlock()
		return
	}
	word, ok := rb.selector.ChooseGuess(player.Board, r.round.WordLength)
	if !ok {
		// Out of ideas: concede rather than stall the round.
		if _, _, err := r.round.GiveUp(alias, r.clock.Now()); err != nil {
			r.logger.Error("bot could not give up", "alias", alias, "error", err)
		}
		r.armDeadlineTimer()
		dels := r.stateDeliveries()
		r.mu.Unlock()
		deliver(dels)
		return
	}
	board, _, err := r.round.PlayGuess(alias, word, len(player.Board.Rows)+1, r.clock.Now())
	if err != nil {
		// A failing bot stops its own loop; the deadline backstop still
		// forces its board along.
		r.logger.Error("bot guess rejected", "alias", alias, "word", word, "error", err)
		r.mu.Unlock()
		return
	}
	if !board.IsFinished() {
		r.scheduleBot(alias, epoch)
	}
	r.armDeadlineTimer()
	dels := r.stateDeliveries()
	r.mu.Unlock()
	deliver(dels)
}

// Deadline enforcement

// armDeadlineTimer points the single forcing timer at the earliest
// upcoming deadline across unfinished boards. Called under the lock.
func (r *Room) armDeadlineTimer() {
	if r.deadlineTimer != nil {
		r.deadlineTimer.Stop()
		r.deadlineTimer = nil
	}
	if r.round.Status != game.RoundPlaying {
		return
	}
	next, ok := r.round.NextDeadline(r.clock.Now())
	if !ok {
		return
	}
	epoch := r.epoch
	r.deadlineTimer = r.clock.AfterFunc(next.Sub(r.clock.Now()), func() { r.onDeadline(epoch) })
}

func (r *Room) onDeadline(epoch int) {
	r.mu.Lock()
	if epoch != r.epoch || r.round.Status != game.RoundPlaying {
		r.mu.Unlock()
		return
	}
	impacted := r.round.ForceGuesses(r.clock.Now())
	for _, p := range impacted {
		r.logger.Info("deadline forced a move", "alias", p.Alias)
	}
	r.armDeadlineTimer()
	dels := r.stateDeliveries()
	r.mu.Unlock()
	deliver(dels)
}

// Queries

// Summary reports the registry-listing view of the room.
func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSummary{
		Code:        r.Code,
		PlayerCount: len(r.round.Players) - len(r.bots),
		BotCount:    len(r.bots),
		Status:      r.round.Status,
		RoundNumber: r.round.RoundNumber,
	}
}

// MaskedState returns the audience projection of the current round.
func (r *Room) MaskedState() *game.MaskedRoundState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round.Mask()
}

// Parameters returns the room's current game parameters.
func (r *Room) Parameters() game.Parameters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params.Clone()
}

// PointSchedule returns the scoring schedule in force.
func (r *Room) PointSchedule() *game.PointSchedule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schedule
}

// PlayerBoard returns the caller's own unmasked board.
func (r *Room) PlayerBoard(connID string) (*game.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	alias, err := r.aliasFor(connID)
	if err != nil {
		return nil, err
	}
	player, ok := r.round.Player(alias)
	if !ok || player.Board == nil {
		return nil, game.NewNotFoundError(game.CodePlayerNotFound, "no board for %q", alias)
	}
	return player.Board, nil
}

// ChatHistory returns the retained chat log.
func (r *Room) ChatHistory() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChatMessage, len(r.chat))
	copy(out, r.chat)
	return out
}

// Broadcast projections

// stateMessageFor picks the unmasked or masked projection for one
// subscriber. Called under the lock.
func (r *Room) stateMessageFor(sub *subscriber) *Message {
	if r.unmaskedFor(sub) {
		return mustMessage(MessageTypeRoundStateUpdated, RoundStateData{State: r.round})
	}
	return mustMessage(MessageTypeRoundStateUpdated, RoundStateData{MaskedState: r.round.Mask()})
}

// unmaskedFor reports whether a subscriber may see the full round state:
// finished rounds are open to all, admins always see everything, and a
// player whose own board is terminal has nothing left to spoil.
func (r *Room) unmaskedFor(sub *subscriber) bool {
	if r.round.Status == game.RoundFinished {
		return true
	}
	if sub.elevated || (r.adminConnID != "" && sub.sender.ID() == r.adminConnID) {
		return true
	}
	if sub.alias == "" {
		return false
	}
	player, ok := r.round.Player(sub.alias)
	return ok && player.Board != nil && player.Board.IsFinished()
}

// stateDeliveries builds one unmasked and one masked projection and
// addresses each subscriber with the right one. Called under the lock.
func (r *Room) stateDeliveries() []delivery {
	var full, masked *Message
	dels := make([]delivery, 0, len(r.subs))
	for _, sub := range r.subs {
		if r.unmaskedFor(sub) {
			if full == nil {
				full = mustMessage(MessageTypeRoundStateUpdated, RoundStateData{State: r.round})
			}
			dels = append(dels, delivery{sub.sender, full})
		} else {
			if masked == nil {
				masked = mustMessage(MessageTypeRoundStateUpdated, RoundStateData{MaskedState: r.round.Mask()})
			}
			dels = append(dels, delivery{sub.sender, masked})
		}
	}
	return dels
}

// boardAndStateDeliveries sends the caller their own unmasked board plus
// the usual state broadcast. Called under the lock.
func (r *Room) boardAndStateDeliveries(connID, alias string, board *game.Board) []delivery {
	var dels []delivery
	if sub, ok := r.subs[connID]; ok {
		dels = append(dels, delivery{sub.sender, mustMessage(MessageTypeBoardUpdated, BoardUpdatedData{Alias: alias, Board: board})})
	}
	return append(dels, r.stateDeliveries()...)
}
