package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shun-hikari/shun-gunma/domain/repositories"
	"github.com/shun-hikari/shun-gunma/internal/speech"
	"github.com/shun-hikari/shun-gunma/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for microphone audio chunks
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The app serves its own frontend; cross-origin playback is fine.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active playback connections
type Hub struct {
	// Registered clients keyed by connection ID.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	tts     repositories.TextToSpeech
	reading *usecase.ReadingService

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(tts repositories.TextToSpeech, reading *usecase.ReadingService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		tts:        tts,
		reading:    reading,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("connectionID", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client.id]
			if ok {
				delete(h.clients, client.id)
			}
			h.mu.Unlock()
			if ok {
				// Stop waits for the playback goroutine to exit, so
				// nothing can write to send once it returns. Only then
				// is the channel safe to close.
				client.sequencer.Stop()
				client.closeReading()
				close(client.send)
			}
			h.logger.Info("Client unregistered", zap.String("connectionID", client.id))
		}
	}
}

// ClientCount reports the number of active connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type WriteData struct {
	// Type is the websocket message type.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between one websocket connection and the
// speech subsystem. Each connection owns one playback sequencer and at
// most one reading-practice stream.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Connection ID
	id string

	// Connection lifetime; cancelled when the read pump exits so
	// anything opened on behalf of this connection unwinds with it.
	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger

	validator *MessageValidator
	sequencer *speech.Sequencer

	// Reading practice state
	readingStream repositories.SpeechToTextStreaming
	readingTarget string

	mutex sync.Mutex
}

// HandleWebSocket upgrades the request and wires a playback client
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan WriteData, 256),
		id:        uuid.NewString(),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		validator: NewMessageValidator(),
	}
	client.sequencer = speech.NewSequencer(hub.tts, logger, client.sendEvent, client.sendAudio)

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// sendEvent forwards a sequencer event to the client as JSON
func (c *Client) sendEvent(ev speech.Event) {
	c.sendJSON(NewPlaybackEventMessage(ev))
}

// sendAudio forwards synthesized audio to the client as a binary frame.
// Frames arrive between the chunk_started and chunk_ended events for
// the utterance they belong to.
func (c *Client) sendAudio(index int, data []byte) {
	select {
	case c.send <- WriteData{Type: websocket.BinaryMessage, Payload: data}:
	default:
		c.logger.Warn("Dropping audio frame, send buffer full",
			zap.String("connectionID", c.id),
			zap.Int("index", index))
	}
}

// sendJSON marshals and queues a JSON message for the client
func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Dropping message, send buffer full", zap.String("connectionID", c.id))
	}
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			// Control messages: speak, stop, rate, reading, ping
			c.processMessage(message)
		case websocket.BinaryMessage:
			// Microphone audio during a reading exercise
			c.processBinaryAudioChunk(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage validates and dispatches a control message
func (c *Client) processMessage(message []byte) {
	parsed, err := c.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected client message", zap.Error(err))
		c.sendJSON(CreateErrorMessage("invalid_message", err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *SpeakStartMessage:
		c.handleSpeakStart(msg)
	case *SpeakStopMessage:
		c.sequencer.Stop()
	case *SetRateMessage:
		c.sequencer.SetRate(msg.Rate)
	case *ReadingStartMessage:
		c.handleReadingStart(msg)
	case *ReadingEndMessage:
		c.handleReadingEnd()
	case *PingMessage:
		c.sendJSON(CreatePongMessage(msg.Data))
	}
}

func (c *Client) handleSpeakStart(msg *SpeakStartMessage) {
	req := speech.SpeakRequest{
		Text:     msg.Text,
		Dialogue: msg.Dialogue,
		Language: msg.Language,
		Rate:     msg.Rate,
	}

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	if err := c.sequencer.Speak(ctx, req); err != nil {
		c.logger.Error("Failed to start playback",
			zap.String("connectionID", c.id),
			zap.Error(err))
		c.sendJSON(CreateErrorMessage("speak_failed", err.Error()))
	}
}

func (c *Client) handleReadingStart(msg *ReadingStartMessage) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.readingStream != nil {
		c.sendJSON(CreateErrorMessage("reading_in_progress", "a reading exercise is already running"))
		return
	}

	stream, err := c.hub.reading.OpenStream(c.ctx, repositories.AudioConfig{
		SampleRate: msg.SampleRate,
		Encoding:   msg.Encoding,
		Language:   msg.Language,
	})
	if err != nil {
		c.logger.Error("Failed to open reading stream", zap.Error(err))
		c.sendJSON(CreateErrorMessage("reading_failed", err.Error()))
		return
	}

	c.readingStream = stream
	c.readingTarget = msg.Target
	c.logger.Info("Reading exercise started",
		zap.String("connectionID", c.id),
		zap.Int("targetLen", len(msg.Target)))
}

func (c *Client) handleReadingEnd() {
	c.mutex.Lock()
	stream := c.readingStream
	target := c.readingTarget
	c.readingStream = nil
	c.readingTarget = ""
	c.mutex.Unlock()

	if stream == nil {
		c.sendJSON(CreateErrorMessage("no_reading", "no reading exercise in progress"))
		return
	}

	transcription, err := stream.End()
	if err != nil {
		c.logger.Warn("Reading transcription failed", zap.Error(err))
		c.sendJSON(CreateErrorMessage("reading_failed", err.Error()))
		return
	}

	result := c.hub.reading.Score(target, transcription)
	c.sendJSON(CreateReadingResultMessage(result))
}

// closeReading aborts a reading exercise left open on the connection,
// releasing the recognizer stream without scoring it.
func (c *Client) closeReading() {
	c.mutex.Lock()
	stream := c.readingStream
	c.readingStream = nil
	c.readingTarget = ""
	c.mutex.Unlock()

	if stream == nil {
		return
	}
	if err := stream.Close(); err != nil {
		c.logger.Warn("Failed to close reading stream",
			zap.String("connectionID", c.id),
			zap.Error(err))
	}
}

// processBinaryAudioChunk forwards microphone audio into the active
// reading-practice stream
func (c *Client) processBinaryAudioChunk(data []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.readingStream == nil {
		c.logger.Warn("Received audio chunk with no reading exercise active",
			zap.String("connectionID", c.id))
		return
	}

	if err := c.readingStream.Stream(data); err != nil {
		c.logger.Error("Failed to stream reading audio",
			zap.String("connectionID", c.id),
			zap.Error(err))
	}
}
