// Package net shares a board between a host and its viewers over
// websockets, and finds hosts on the LAN with mDNS.
package net

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"FreehandBoard/internal/state"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Path is where the hub accepts websocket connections.
	Path = "/ws"
	// SnapshotPath serves the current board as PNG.
	SnapshotPath = "/snapshot.png"

	sendQueue    = 256
	writeTimeout = 10 * time.Second
	maxOpBytes   = 32 << 20
)

var ErrClosed = errors.New("net: connection closed")

// Board is the drawing the hub or a client keeps in step with its peers.
type Board interface {
	Snapshot() ([]byte, error)
	ApplySnapshot(data []byte) error
	ApplySegment(seg state.Segment) error
	ClearRemote()
}

// Peer is one connected viewer.
type Peer struct {
	ID   string
	conn *websocket.Conn
	send chan state.Op
	once sync.Once
}

func (p *Peer) close() {
	p.once.Do(func() { close(p.send) })
}

// Hub is run by the host. It seeds every viewer with a snapshot, fans the
// host's ops out to all viewers and relays each viewer's ops to the rest.
type Hub struct {
	board Board
	clock *state.Clock
	log   *slog.Logger

	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[string]*Peer
}

func NewHub(board Board, clock *state.Clock, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		board: board,
		clock: clock,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Viewers are native apps on the LAN, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[string]*Peer),
	}
}

// Handler routes the websocket endpoint and the PNG snapshot.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, h.serveWS)
	mux.HandleFunc(SnapshotPath, h.serveSnapshot)
	return mux
}

// ListenAndServe blocks serving the hub on port until the server fails.
func (h *Hub) ListenAndServe(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	h.log.Info("share hub listening", "port", port)
	return srv.ListenAndServe()
}

// Peers returns the number of connected viewers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// PublishSegment sends a locally drawn segment to every viewer.
func (h *Hub) PublishSegment(seg state.Segment) {
	h.broadcast(h.clock.Stamp(state.Op{Type: state.OpSegment, Segment: &seg}), "")
}

// PublishClear tells every viewer the host cleared the board.
func (h *Hub) PublishClear() {
	h.broadcast(h.clock.Stamp(state.Op{Type: state.OpClear}), "")
}

func (h *Hub) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := h.board.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	conn.SetReadLimit(maxOpBytes)

	peer := &Peer{ID: uuid.NewString(), conn: conn, send: make(chan state.Op, sendQueue)}
	if err := h.add(peer); err != nil {
		h.log.Warn("snapshot for new viewer failed", "err", err)
		_ = conn.Close()
		return
	}
	h.log.Info("viewer connected", "peer", peer.ID, "remote", r.RemoteAddr)

	go h.writeLoop(peer)
	h.readLoop(peer)

	h.remove(peer)
	h.log.Info("viewer disconnected", "peer", peer.ID)
}

// add queues the snapshot and registers the peer under the same lock
// broadcasts take, so no op can fall between the two.
func (h *Hub) add(peer *Peer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	data, err := h.board.Snapshot()
	if err != nil {
		return err
	}
	peer.send <- h.clock.Stamp(state.Op{Type: state.OpSnapshot, Snapshot: data})
	h.peers[peer.ID] = peer
	return nil
}

func (h *Hub) remove(peer *Peer) {
	h.mu.Lock()
	if _, ok := h.peers[peer.ID]; ok {
		delete(h.peers, peer.ID)
		peer.close()
	}
	h.mu.Unlock()
}

func (h *Hub) readLoop(peer *Peer) {
	for {
		var op state.Op
		if err := peer.conn.ReadJSON(&op); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("viewer read failed", "peer", peer.ID, "err", err)
			}
			return
		}
		h.clock.Observe(op.Lamport)
		if op.Type == state.OpSnapshot {
			h.log.Warn("ignoring snapshot from viewer", "peer", peer.ID)
			continue
		}
		if err := apply(h.board, op); err != nil {
			h.log.Warn("dropping viewer op", "peer", peer.ID, "type", op.Type, "err", err)
			continue
		}
		h.broadcast(op, peer.ID)
	}
}

func (h *Hub) writeLoop(peer *Peer) {
	defer peer.conn.Close()
	for op := range peer.send {
		_ = peer.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := peer.conn.WriteJSON(op); err != nil {
			h.log.Warn("viewer write failed", "peer", peer.ID, "err", err)
			return
		}
	}
	_ = peer.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// broadcast queues op for every peer except skip. A peer that cannot keep
// up is disconnected.
func (h *Hub) broadcast(op state.Op, skip string) {
	var slow []*Peer
	h.mu.RLock()
	for id, p := range h.peers {
		if id == skip {
			continue
		}
		select {
		case p.send <- op:
		default:
			slow = append(slow, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range slow {
		h.log.Warn("viewer too slow, disconnecting", "peer", p.ID)
		h.remove(p)
	}
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, p := range h.peers {
		delete(h.peers, id)
		p.close()
	}
}

// apply replays a peer's op onto the local board.
func apply(b Board, op state.Op) error {
	switch op.Type {
	case state.OpSegment:
		if op.Segment == nil {
			return fmt.Errorf("segment op without segment")
		}
		return b.ApplySegment(*op.Segment)
	case state.OpClear:
		b.ClearRemote()
		return nil
	case state.OpSnapshot:
		return b.ApplySnapshot(op.Snapshot)
	}
	return fmt.Errorf("unknown op type %q", op.Type)
}
