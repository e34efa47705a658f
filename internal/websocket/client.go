package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
	readLimit      = 512
)

// Client is one subscriber to ledger changes. Traffic is server to client;
// anything the client sends is read and dropped so control frames keep
// flowing.
type Client struct {
	id   string
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

// NewClient creates a Client tied to the given hub and connection.
func NewClient(hub *Hub, conn *ws.Conn) *Client {
	conn.SetReadLimit(readLimit)
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Run joins the hub, greeting the client with hello, and forwards ledger
// changes until the connection drops or ctx is done.
func (c *Client) Run(ctx context.Context, hello func() Message) {
	c.hub.Join(c, hello)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer cancel()
		c.forward(ctx)
	}()
	c.drain(ctx)
}

func (c *Client) drain(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			c.hub.logger.Debug("client read ended", "client", c.id, "error", err)
			return
		}
	}
}

// forward writes queued changes in order. A write that cannot finish within
// writeTimeout ends the client; it will resync on reconnect.
func (c *Client) forward(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(wctx, ws.MessageText, msg)
			cancel()
			if err != nil {
				c.hub.logger.Warn("client write failed", "client", c.id, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
