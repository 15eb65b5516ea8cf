package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readLimit  = 4096
	pongWait   = 60 * time.Second
	sendBuffer = 16
)

// Client is one alert stream subscriber. Inbound messages are ignored; the read pump only
// tracks liveness.
type Client struct {
	id           string
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	pingInterval time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(id string)
}

func newClient(id string, conn *websocket.Conn, pingInterval, writeTimeout time.Duration, logger *zap.Logger, onClose func(string)) *Client {
	return &Client{
		id:           id,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger,
		onClose:      onClose,
	}
}

func (c *Client) run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) enqueue(msg []byte) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.logger.Warn("dropping alert for slow client, buffer full", zap.String("client_id", c.id))
	}
}

func (c *Client) readPump() {
	defer c.close()
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.logger.Debug("alert stream read closed", zap.String("client_id", c.id), zap.Error(err))
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.write(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(messageType, data)
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c.id)
		}
	})
}
