package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/logs"
)

type client struct {
	hub   *Hub
	key   Key
	conn  *websocket.Conn
	queue *FrameQueue
	done  chan struct{}
	once  sync.Once
}

func newClient(h *Hub, key Key, conn *websocket.Conn) *client {
	return &client{
		hub:   h,
		key:   key,
		conn:  conn,
		queue: NewFrameQueue(h.opt.QueueSize, h.opt.Overflow),
		done:  make(chan struct{}),
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.queue.Close()
		c.hub.unregister(c)
	})
}

// readLoop discards inbound frames; it exists to process pongs and detect disconnects.
func (c *client) readLoop() {
	defer c.close()
	opt := c.hub.opt
	c.conn.SetReadLimit(opt.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(opt.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(opt.PongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logs.Debugf("websocket %s read, err: %+v", c.key, err)
			}
			return
		}
	}
}

// writeLoop owns every data write on the connection and closes it on exit.
func (c *client) writeLoop() {
	opt := c.hub.opt
	ticker := time.NewTicker(opt.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(opt.WriteTimeout),
			)
			return
		case <-c.queue.Ready():
			for {
				frame, ok := c.queue.Pop()
				if !ok {
					break
				}
				_ = c.conn.SetWriteDeadline(time.Now().Add(opt.WriteTimeout))
				if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					logs.Warnf("websocket %s write, err: %+v", c.key, err)
					c.close()
					return
				}
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(opt.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
