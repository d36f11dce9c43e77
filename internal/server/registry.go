package server

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/wordroyale/wordroyale/internal/game"
	"github.com/wordroyale/wordroyale/internal/randutil"
	"github.com/wordroyale/wordroyale/internal/roomcode"
	"github.com/wordroyale/wordroyale/internal/words"
)

const createRoomAttempts = 20

// Registry creates and looks up rooms. Rooms live for the process
// lifetime; there is no cleanup.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	params   game.Parameters
	schedule *game.PointSchedule
	catalog  *words.Catalog
	rng      *rand.Rand
	codes    *roomcode.Generator
	clock    quartz.Clock
	logger   *log.Logger

	// onListChanged fires (outside any room lock) when the room listing
	// should be re-broadcast to lobby connections.
	onListChanged func()
}

// NewRegistry creates a room registry with the given room defaults.
func NewRegistry(params game.Parameters, schedule *game.PointSchedule, catalog *words.Catalog, rng *rand.Rand, clock quartz.Clock, logger *log.Logger) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		params:   params,
		schedule: schedule,
		catalog:  catalog,
		rng:      rng,
		codes:    roomcode.NewGenerator(rng),
		clock:    clock,
		logger:   logger.WithPrefix("registry"),
	}
}

// SetListChanged installs the room-listing broadcast hook.
func (reg *Registry) SetListChanged(fn func()) {
	reg.mu.Lock()
	reg.onListChanged = fn
	reg.mu.Unlock()
}

func (reg *Registry) listChanged() {
	reg.mu.Lock()
	fn := reg.onListChanged
	reg.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// CreateRoom allocates a room under a fresh code.
func (reg *Registry) CreateRoom() (*Room, error) {
	reg.mu.Lock()
	var code string
	for range createRoomAttempts {
		candidate := reg.codes.Generate()
		if _, taken := reg.rooms[candidate]; !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		reg.mu.Unlock()
		return nil, game.NewStateConflictError(game.CodeInvalidState, "could not allocate a room code")
	}
	// Each room gets its own derived RNG; rand.Rand is not safe for use
	// from more than one room lock.
	room := newRoom(code, reg.params.Clone(), reg.schedule, reg.catalog, randutil.New(reg.rng.Int64()), reg.clock, reg.logger)
	room.notifyList = reg.listChanged
	reg.rooms[code] = room
	reg.mu.Unlock()
	reg.logger.Info("room created", "code", code)
	reg.listChanged()
	return room, nil
}

// Room looks up a room by code.
func (reg *Registry) Room(code string) (*Room, error) {
	if err := roomcode.Validate(code); err != nil {
		return nil, game.NewNotFoundError(game.CodeRoomNotFound, "no room %q", code)
	}
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	reg.mu.Unlock()
	if !ok {
		return nil, game.NewNotFoundError(game.CodeRoomNotFound, "no room %q", code)
	}
	return room, nil
}

// Summaries lists every room, ordered by code.
func (reg *Registry) Summaries() []RoomSummary {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.Unlock()

	out := make([]RoomSummary, len(rooms))
	for i, room := range rooms {
		out[i] = room.Summary()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
