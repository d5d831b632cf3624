// Package chat connects to the chat gateway and streams raw messages
// from subscribed channels.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"lowcap-signals/internal/domain"
	"lowcap-signals/internal/observability"
)

// ClientConfig configures gateway client behavior.
type ClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// Buffer is the capacity of the delivered message channel.
	Buffer int
}

// DefaultClientConfig returns default gateway configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		Buffer:            1024,
	}
}

// Client streams chat messages from the gateway over a WebSocket.
// It reconnects with exponential backoff and resubscribes to its
// channel allow-list after every reconnect.
type Client struct {
	endpoint string
	config   ClientConfig
	channels map[string]struct{}
	metrics  *observability.Metrics
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	out chan domain.RawMessage

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewClient creates a gateway client, connects, and subscribes to the
// given channels. Messages from channels outside the list are dropped.
func NewClient(ctx context.Context, endpoint string, channels []string, config *ClientConfig) (*Client, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("at least one channel required")
	}

	cfg := DefaultClientConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultClientConfig().Buffer
	}

	allowed := make(map[string]struct{}, len(channels))
	for _, ch := range channels {
		allowed[ch] = struct{}{}
	}

	c := &Client{
		endpoint: endpoint,
		config:   cfg,
		channels: allowed,
		metrics:  observability.DefaultMetrics,
		logger:   log.New(os.Stdout, "[chat] ", log.LstdFlags),
		out:      make(chan domain.RawMessage, cfg.Buffer),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	if err := c.subscribe(); err != nil {
		c.conn.Close()
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Messages returns the stream of delivered messages. The channel is
// closed when the client is closed.
func (c *Client) Messages() <-chan domain.RawMessage {
	return c.out
}

// connect establishes the WebSocket connection.
func (c *Client) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// subscribe sends the channel allow-list to the gateway.
func (c *Client) subscribe() error {
	names := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		names = append(names, ch)
	}

	req := gatewayFrame{
		Op:       "subscribe",
		Channels: names,
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the connection and the message stream.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.out)
	return nil
}

// readLoop reads frames and dispatches messages until the client closes.
func (c *Client) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleFrame(message)
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *Client) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	c.metrics.ChatReconnects.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}

	if err := c.subscribe(); err != nil {
		c.logger.Printf("resubscribe failed: %v", err)
	}
}

// handleFrame parses one gateway frame and delivers message frames.
func (c *Client) handleFrame(raw []byte) {
	var frame gatewayFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.logger.Printf("malformed frame: %v", err)
		return
	}

	switch frame.Op {
	case "message":
		ts := frame.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		msg := domain.RawMessage{
			Text:      frame.Text,
			Channel:   frame.Channel,
			Timestamp: ts,
		}

		// The gateway should only send subscribed channels; anything
		// else is dropped and counted.
		if _, ok := c.channels[msg.Channel]; !ok {
			c.metrics.ChatMessagesDropped.Inc()
			return
		}

		// Block until we can send - never drop subscribed messages
		select {
		case c.out <- msg:
		case <-c.done:
			return
		}

	case "subscribed", "pong":
		// Acknowledgements carry no payload.

	case "error":
		c.logger.Printf("gateway error: %s", frame.Error)
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			c.connMu.Unlock()
		}
	}
}

// gatewayFrame is the single frame shape used in both directions.
type gatewayFrame struct {
	Op        string    `json:"op"`
	Channels  []string  `json:"channels,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Text      string    `json:"text,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Error     string    `json:"error,omitempty"`
}
