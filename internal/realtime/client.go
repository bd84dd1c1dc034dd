package realtime

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carebridgehq/chatsync/internal/bus"
	"github.com/carebridgehq/chatsync/internal/status"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultRetryInterval is the pause between reconnect attempts.
const DefaultRetryInterval = 5 * time.Second

// Client maintains the websocket connection to the push feed, decodes
// frames, and republishes them on the bus under the rt. namespace. It
// drives the connection state machine but applies nothing to the stores
// itself; the sync engine subscribes to the bus independently.
type Client struct {
	url           string
	token         string
	bus           *bus.Bus
	machine       *status.Machine
	logger        *zap.Logger
	retryInterval time.Duration
	cancel        context.CancelFunc
}

// NewClient creates a realtime client for the given feed URL.
func NewClient(url, token string, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *Client {
	return &Client{
		url:           url,
		token:         token,
		bus:           b,
		machine:       machine,
		logger:        logger,
		retryInterval: DefaultRetryInterval,
	}
}

// SetRetryInterval overrides the reconnect pause. Call before Start.
func (c *Client) SetRetryInterval(d time.Duration) {
	if d > 0 {
		c.retryInterval = d
	}
}

// Start begins the connect/read/reconnect loop in the background.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	go c.loop(ctx)
}

// Stop terminates the loop and closes any open connection.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Client) loop(ctx context.Context) {
	for {
		if err := c.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("realtime connection lost", zap.Error(err))
			_ = c.machine.Transition(status.Reconnecting)
		}

		select {
		case <-time.After(c.retryInterval):
			_ = c.machine.Transition(status.Connecting)
		case <-ctx.Done():
			return
		}
	}
}

// runOnce dials the feed and reads frames until the connection fails or
// the context is cancelled.
func (c *Client) runOnce(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	c.logger.Info("realtime feed connected", zap.String("url", c.url))
	_ = c.machine.Transition(status.Syncing)

	// Close the socket when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		evt, err := Parse(raw)
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				c.logger.Debug("skipping unknown realtime event", zap.Error(err))
			} else {
				c.logger.Warn("malformed realtime frame", zap.Error(err))
			}
			continue
		}
		c.bus.Publish(evt)
	}
}
