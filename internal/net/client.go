package net

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"FreehandBoard/internal/state"

	"github.com/gorilla/websocket"
)

// Client is a viewer's connection to a host's hub. Outgoing ops are queued
// and written by a single goroutine, so publishing never blocks the caller.
type Client struct {
	conn  *websocket.Conn
	board Board
	clock *state.Clock
	log   *slog.Logger

	send      chan state.Op
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// closeGrace bounds how long Close waits for queued ops to flush.
const closeGrace = time.Second

// Dial connects to the hub at addr (host:port).
func Dial(ctx context.Context, addr string, board Board, clock *state.Clock, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}
	conn.SetReadLimit(maxOpBytes)
	logger.Info("connected to host", "addr", addr)
	c := &Client{
		conn:    conn,
		board:   board,
		clock:   clock,
		log:     logger,
		send:    make(chan state.Op, sendQueue),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.writeLoop()
	return c, nil
}

// Run applies the host's ops to the board until the connection ends or ctx
// is done. The client is closed when Run returns.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()
	defer c.Close()

	for {
		var op state.Op
		if err := c.conn.ReadJSON(&op); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrClosed
			}
			return fmt.Errorf("read op: %w", err)
		}
		c.clock.Observe(op.Lamport)
		if op.Site == c.clock.Site() {
			continue
		}
		if err := apply(c.board, op); err != nil {
			c.log.Warn("dropping host op", "type", op.Type, "err", err)
		}
	}
}

// PublishSegment sends a segment drawn on this viewer to the host.
func (c *Client) PublishSegment(seg state.Segment) {
	c.enqueue(c.clock.Stamp(state.Op{Type: state.OpSegment, Segment: &seg}))
}

// PublishClear tells the host this viewer cleared the board.
func (c *Client) PublishClear() {
	c.enqueue(c.clock.Stamp(state.Op{Type: state.OpClear}))
}

func (c *Client) enqueue(op state.Op) {
	select {
	case <-c.done:
		return
	case <-c.stopped:
		return
	default:
	}
	select {
	case c.send <- op:
	default:
		c.log.Warn("host too slow, dropping op", "type", op.Type)
	}
}

func (c *Client) writeLoop() {
	defer close(c.stopped)
	defer c.conn.Close()
	for {
		select {
		case op := <-c.send:
			if !c.write(op) {
				return
			}
		case <-c.done:
			for {
				select {
				case op := <-c.send:
					if !c.write(op) {
						return
					}
				default:
					_ = c.conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(closeGrace))
					return
				}
			}
		}
	}
}

func (c *Client) write(op state.Op) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(op); err != nil {
		c.log.Warn("send to host failed", "type", op.Type, "err", err)
		return false
	}
	return true
}

// Close flushes queued ops, says goodbye to the host and closes the
// connection. A host that stops reading is cut off after a short grace.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	select {
	case <-c.stopped:
	case <-time.After(closeGrace):
		_ = c.conn.Close()
		<-c.stopped
	}
	return nil
}
