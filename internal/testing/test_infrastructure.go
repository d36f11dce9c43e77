package testing

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/wordroyale/wordroyale/internal/game"
	"github.com/wordroyale/wordroyale/internal/randutil"
	"github.com/wordroyale/wordroyale/internal/server"
	"github.com/wordroyale/wordroyale/internal/words"
)

// Test constants
const (
	EventTimeout       = 2 * time.Second
	ServerReadyTimeout = 5 * time.Second
	TestSeed           = 42
)

// TestServer wraps a running server instance
type TestServer struct {
	Registry *server.Registry
	srv      *server.Server
	addr     string
}

func (s *TestServer) URL() string {
	return "ws://" + s.addr + "/ws"
}

func (s *TestServer) Stop() {
	if s.srv != nil {
		_ = s.srv.Stop()
	}
}

// startTestServer boots a full server on a free loopback port. Room timers
// run on the real clock unless a mock is provided.
func startTestServer(t *testing.T, clock ...quartz.Clock) *TestServer {
	t.Helper()

	gameClock := quartz.Clock(quartz.NewReal())
	if len(clock) > 0 {
		gameClock = clock[0]
	}

	catalog, err := words.NewCatalog()
	require.NoError(t, err, "Failed to load word lists")

	// Quiet logs during tests
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})

	registry := server.NewRegistry(
		game.DefaultParameters(),
		game.DefaultPointSchedule(),
		catalog,
		randutil.New(TestSeed),
		gameClock,
		logger,
	)

	addr := fmt.Sprintf("127.0.0.1:%d", findFreePort(t))
	srv := server.NewServer(addr, registry, logger)

	go func() {
		if err := srv.Start(); err != nil {
			t.Logf("Server start failed: %v", err)
		}
	}()

	ts := &TestServer{Registry: registry, srv: srv, addr: addr}
	t.Cleanup(ts.Stop)

	waitForServerReady(t, ts.URL(), ServerReadyTimeout)
	return ts
}

func findFreePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()
	return port
}

func waitForServerReady(t *testing.T, serverURL string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		conn, _, err := websocket.DefaultDialer.Dial(serverURL, nil)
		if err == nil {
			_ = conn.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatalf("Server at %s did not become ready within %v", serverURL, timeout)
}

// TestClient is a raw WebSocket client with an inbox for message-driven
// synchronization.
type TestClient struct {
	t    *testing.T
	conn *websocket.Conn
	msgs chan *server.Message

	closeOnce sync.Once
}

func connectTestClient(t *testing.T, serverURL string) *TestClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(serverURL, nil)
	require.NoError(t, err, "Failed to connect test client")

	c := &TestClient{
		t:    t,
		conn: conn,
		msgs: make(chan *server.Message, 100),
	}
	go c.readLoop()
	t.Cleanup(c.Close)
	return c
}

func (c *TestClient) Close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}

func (c *TestClient) readLoop() {
	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		select {
		case c.msgs <- &msg:
		default:
			// Inbox full; tests that care will time out loudly
		}
	}
}

// Send marshals and writes a message to the server.
func (c *TestClient) Send(msgType server.MessageType, data any) {
	c.t.Helper()
	msg, err := server.NewMessage(msgType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// WaitFor blocks until a message of the given type arrives, skipping
// everything else.
func (c *TestClient) WaitFor(msgType server.MessageType) *server.Message {
	c.t.Helper()
	timeout := time.After(EventTimeout)

	for {
		select {
		case msg := <-c.msgs:
			if msg.Type == msgType {
				return msg
			}
		case <-timeout:
			c.t.Fatalf("No %s message received within %v", msgType, EventTimeout)
			return nil
		}
	}
}

// WaitForError blocks until an error message arrives.
func (c *TestClient) WaitForError() server.ErrorData {
	c.t.Helper()
	return decodePayload[server.ErrorData](c.t, c.WaitFor(server.MessageTypeError))
}

// WaitForStatus consumes round state broadcasts until one reports the given
// status, masked or not.
func (c *TestClient) WaitForStatus(status game.RoundStatus) server.RoundStateData {
	c.t.Helper()
	for {
		msg := c.WaitFor(server.MessageTypeRoundStateUpdated)
		data := decodePayload[server.RoundStateData](c.t, msg)
		if data.State != nil && data.State.Status == status {
			return data
		}
		if data.MaskedState != nil && data.MaskedState.Status == status {
			return data
		}
	}
}

// CreateRoom creates a room and returns its code.
func (c *TestClient) CreateRoom() string {
	c.t.Helper()
	c.Send(server.MessageTypeCreateRoom, nil)
	data := decodePayload[server.RoomCreatedData](c.t, c.WaitFor(server.MessageTypeRoomCreated))
	require.NotEmpty(c.t, data.RoomCode)
	return data.RoomCode
}

// Join registers an alias in a room and returns the registered player.
func (c *TestClient) Join(roomCode, alias string) server.AliasRegisteredData {
	c.t.Helper()
	c.Send(server.MessageTypeRegisterAlias, server.RegisterAliasData{RoomCode: roomCode, Alias: alias})
	data := decodePayload[server.AliasRegisteredData](c.t, c.WaitFor(server.MessageTypeAliasRegistered))
	require.NotNil(c.t, data.Player)
	require.Equal(c.t, alias, data.Player.Alias)
	return data
}

func decodePayload[T any](t *testing.T, msg *server.Message) T {
	t.Helper()
	var data T
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}
