package recognizer

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var defaultRetryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// Config describes the recognizer server and the session handshake.
type Config struct {
	Host                 string
	Port                 int
	SSL                  bool
	Mode                 string // online, offline or 2pass
	ChunkSize            []int
	ChunkInterval        int
	EncoderChunkLookBack int
	DecoderChunkLookBack int
	ITN                  bool
	Hotwords             map[string]int
	WavName              string
	SampleRate           int
}

// URL returns the websocket address of the server.
func (c Config) URL() string {
	scheme := "ws"
	if c.SSL {
		scheme = "wss"
	}
	return scheme + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type handshake struct {
	Mode                 string `json:"mode"`
	ChunkSize            []int  `json:"chunk_size"`
	ChunkInterval        int    `json:"chunk_interval"`
	EncoderChunkLookBack int    `json:"encoder_chunk_look_back"`
	DecoderChunkLookBack int    `json:"decoder_chunk_look_back"`
	WavName              string `json:"wav_name"`
	IsSpeaking           bool   `json:"is_speaking"`
	Hotwords             string `json:"hotwords"`
	ITN                  bool   `json:"itn"`
	SampleRate           int    `json:"sample_rate,omitempty"`
}

type endOfSpeech struct {
	IsSpeaking bool `json:"is_speaking"`
}

func (c Config) handshake() (handshake, error) {
	hotwords := ""
	if len(c.Hotwords) > 0 {
		data, err := json.Marshal(c.Hotwords)
		if err != nil {
			return handshake{}, fmt.Errorf("encode hotwords: %w", err)
		}
		hotwords = string(data)
	}
	return handshake{
		Mode:                 c.Mode,
		ChunkSize:            c.ChunkSize,
		ChunkInterval:        c.ChunkInterval,
		EncoderChunkLookBack: c.EncoderChunkLookBack,
		DecoderChunkLookBack: c.DecoderChunkLookBack,
		WavName:              c.WavName,
		IsSpeaking:           true,
		Hotwords:             hotwords,
		ITN:                  c.ITN,
		SampleRate:           c.SampleRate,
	}, nil
}

// Client streams PCM audio to a FunASR-style recognizer over a websocket and
// delivers its results as events.
type Client struct {
	config Config
	dialer *websocket.Dialer

	conn    *websocket.Conn
	events  chan Event
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool

	maxRetries  int
	retryDelays []time.Duration

	finalDone chan struct{}
}

// NewClient creates a client. With SSL enabled, certificate verification is
// disabled because recognizer servers ship self-signed certificates.
func NewClient(cfg Config) *Client {
	dialer := *websocket.DefaultDialer
	if cfg.SSL {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		config:      cfg,
		dialer:      &dialer,
		events:      make(chan Event, 100),
		maxRetries:  3,
		retryDelays: defaultRetryDelays,
		finalDone:   make(chan struct{}, 1),
	}
}

// Start connects, sends the handshake and begins reading results.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("client already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	if err := c.connectLocked(); err != nil {
		c.cancel()
		return err
	}
	c.started = true

	c.wg.Add(1)
	go c.readLoop()

	log.Printf("Recognizer: connected to %s, mode=%s", c.config.URL(), c.config.Mode)
	return nil
}

// connectLocked dials and sends the handshake. Must be called with mu held.
func (c *Client) connectLocked() error {
	hs, err := c.config.handshake()
	if err != nil {
		return err
	}

	url := c.config.URL()
	log.Printf("Recognizer: connecting to %s", url)
	conn, resp, err := c.dialer.DialContext(c.ctx, url, nil)
	if err != nil {
		if resp != nil {
			log.Printf("Recognizer: dial failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("websocket dial: %w", err)
	}

	if err := conn.WriteJSON(hs); err != nil {
		conn.Close()
		return fmt.Errorf("send handshake: %w", err)
	}
	c.conn = conn
	return nil
}

// reconnect re-establishes the connection with backoff and reports whether it
// succeeded.
func (c *Client) reconnect() bool {
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			idx := attempt - 1
			if idx >= len(c.retryDelays) {
				idx = len(c.retryDelays) - 1
			}
			delay := c.retryDelays[idx]
			log.Printf("Recognizer: reconnect attempt %d/%d after %v", attempt+1, c.maxRetries, delay)

			select {
			case <-c.ctx.Done():
				return false
			case <-time.After(delay):
			}
		} else {
			select {
			case <-c.ctx.Done():
				return false
			default:
			}
			log.Printf("Recognizer: reconnect attempt %d/%d", attempt+1, c.maxRetries)
		}

		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		err := c.connectLocked()
		c.mu.Unlock()

		if err == nil {
			log.Printf("Recognizer: reconnected")
			c.emit(Event{Err: fmt.Errorf("connection interrupted, reconnected"), Received: time.Now()})
			return true
		}
		log.Printf("Recognizer: reconnect failed: %v", err)
	}
	return false
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	defer close(c.events)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn == nil {
			if !c.reconnect() {
				c.emit(Event{Err: fmt.Errorf("connection lost, reconnection failed after %d attempts", c.maxRetries), Received: time.Now()})
				return
			}
			continue
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
				return
			default:
			}

			log.Printf("Recognizer: read error: %v, attempting reconnection", err)
			if !c.reconnect() {
				c.emit(Event{Err: fmt.Errorf("websocket read: %w, reconnection failed", err), Received: time.Now()})
				return
			}
			continue
		}

		ev, ok, err := ParseMessage(data, time.Now())
		if err != nil {
			log.Printf("Recognizer: %v", err)
			continue
		}
		if !ok {
			continue
		}

		if ev.IsFinal || ev.Mode == Confirmed {
			select {
			case c.finalDone <- struct{}{}:
			default:
			}
		}
		c.emit(ev)
	}
}

func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

// SendChunk sends raw PCM audio as a binary frame.
func (c *Client) SendChunk(audio []byte) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return fmt.Errorf("client not started")
	}
	conn := c.conn
	c.mu.Unlock()

	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
	}

	if conn == nil {
		return fmt.Errorf("no connection")
	}

	c.mu.Lock()
	err := c.conn.WriteMessage(websocket.BinaryMessage, audio)
	c.mu.Unlock()
	if err != nil {
		log.Printf("Recognizer: write error: %v, attempting reconnection", err)
		if c.reconnect() {
			c.mu.Lock()
			err = c.conn.WriteMessage(websocket.BinaryMessage, audio)
			c.mu.Unlock()
			if err == nil {
				return nil
			}
		}
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

// Events returns the result channel. It is closed when the client stops.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Finalize tells the server speech has ended and waits for a final result.
func (c *Client) Finalize(ctx context.Context) error {
	c.mu.Lock()
	if !c.started || c.conn == nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	select {
	case <-c.finalDone:
	default:
	}

	c.mu.Lock()
	err := c.conn.WriteJSON(endOfSpeech{IsSpeaking: false})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("finalize write: %w", err)
	}

	log.Printf("Recognizer: sent end of speech, waiting for final result")
	select {
	case <-c.finalDone:
		return nil
	case <-ctx.Done():
		log.Printf("Recognizer: finalize timeout")
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// Close shuts the connection and waits for the reader to exit.
func (c *Client) Close() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	conn := c.conn
	c.started = false
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}

	c.wg.Wait()
	log.Printf("Recognizer: closed")
	return nil
}
