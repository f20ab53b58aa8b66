package display

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	sendBuffer = 64
)

// Event names used on the overlay socket.
const (
	EventSource = "source"
	EventTarget = "target"
)

// Message is the JSON frame sent to overlay clients.
type Message struct {
	Event string      `json:"event"`
	ID    string      `json:"id"`
	Data  MessageData `json:"data"`
}

type MessageData struct {
	Content     string `json:"content"`
	Incremental bool   `json:"incremental"`
}

func buildMessage(event, text string, incremental bool) Message {
	return Message{
		Event: event,
		ID:    uuid.NewString(),
		Data:  MessageData{Content: text, Incremental: incremental},
	}
}

func encodeMessage(m Message) []byte {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		log.Printf("Overlay: json marshal error: %v", err)
	}
	return jsonBytes
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type overlayClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Overlay broadcasts caption events to websocket clients connected on /ws.
// Newly connected clients first receive the latest source and target.
type Overlay struct {
	addr string

	register   chan *overlayClient
	unregister chan *overlayClient
	broadcast  chan Message
	done       chan struct{}

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	stopOnce sync.Once
}

// NewOverlay creates an overlay hub that will listen on addr (host:port).
func NewOverlay(addr string) *Overlay {
	return &Overlay{
		addr:       addr,
		register:   make(chan *overlayClient),
		unregister: make(chan *overlayClient),
		broadcast:  make(chan Message, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Start binds the listener and serves until ctx is cancelled or Stop is called.
func (o *Overlay) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", o.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", o.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", o.serveWS)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	o.mu.Lock()
	o.listener = ln
	o.server = srv
	o.mu.Unlock()

	go o.run()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Overlay: serve error: %v", err)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			o.Stop()
		case <-o.done:
		}
	}()

	log.Printf("Overlay: listening on ws://%s/ws", ln.Addr())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (o *Overlay) Addr() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.listener != nil {
		return o.listener.Addr().String()
	}
	return o.addr
}

// Stop shuts the server down and disconnects every client.
func (o *Overlay) Stop() {
	o.stopOnce.Do(func() {
		close(o.done)
		o.mu.Lock()
		srv := o.server
		o.mu.Unlock()
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("Overlay: shutdown error: %v", err)
			}
		}
	})
}

func (o *Overlay) SourceUpdated(text string) {
	o.publish(buildMessage(EventSource, text, false))
}

func (o *Overlay) TargetUpdated(text string, incremental bool) {
	o.publish(buildMessage(EventTarget, text, incremental))
}

func (o *Overlay) publish(msg Message) {
	select {
	case o.broadcast <- msg:
	case <-o.done:
	default:
		log.Printf("Overlay: broadcast buffer full, dropping update")
	}
}

// run owns the client set and the latest caption of each kind.
func (o *Overlay) run() {
	clients := make(map[*overlayClient]bool)
	var lastSource, lastTarget []byte
	defer func() {
		for c := range clients {
			close(c.send)
		}
	}()

	for {
		select {
		case c := <-o.register:
			clients[c] = true
			for _, data := range [][]byte{lastSource, lastTarget} {
				if data != nil {
					c.send <- data
				}
			}
			log.Printf("Overlay: client joined, %d connected", len(clients))
		case c := <-o.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				log.Printf("Overlay: client left, %d connected", len(clients))
			}
		case msg := <-o.broadcast:
			data := encodeMessage(msg)
			if msg.Event == EventSource {
				lastSource = data
			} else {
				lastTarget = data
			}
			for c := range clients {
				select {
				case c.send <- data:
				default:
					delete(clients, c)
					close(c.send)
					log.Printf("Overlay: dropping slow client")
				}
			}
		case <-o.done:
			return
		}
	}
}

func (o *Overlay) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Overlay: upgrade failed: %v", err)
		return
	}

	c := &overlayClient{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case o.register <- c:
	case <-o.done:
		conn.Close()
		return
	}

	go o.writePump(c)
	go o.readPump(c)
}

// readPump only services control frames; overlay clients do not send data.
func (o *Overlay) readPump(c *overlayClient) {
	defer func() {
		select {
		case o.unregister <- c:
		case <-o.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Overlay: read error: %v", err)
			}
			return
		}
	}
}

func (o *Overlay) writePump(c *overlayClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("Overlay: write error: %v", err)
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
