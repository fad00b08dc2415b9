// Package apiserver exposes the arena over HTTP (spec section 6: "External
// interfaces" -- reset/step/lookup as REST, ranked outputs pushed live over
// a websocket), grounded on server/server.go's gorilla/websocket
// upgrade/ping-pong/publish pattern, with gorilla/mux routing added for the
// REST surface. Where the teacher
// served a single svg view to a single assumed client, this serves JSON to
// any number of concurrent clients, so the single shared websocket
// connection becomes a registered-client hub with the same keepalive
// discipline.
package apiserver

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"thrustersim/arena"
	"thrustersim/config"
	"thrustersim/heuristic"
	"thrustersim/motordata"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 8192
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Time to wait before force close on connection.
	closeGracePeriod = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server wires an arena.Arena and its motor-data table to a REST+websocket
// API. It holds no optimisation state of its own beyond the last ranked
// outputs, which a GET by id is served from without re-stepping.
type Server struct {
	addr  string
	arena arena.Arena
	data  *motordata.Table

	mu   sync.RWMutex
	last []arena.OptimizationOutput

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]chan []arena.OptimizationOutput
}

// NewServer builds a Server around an already-constructed arena and motor
// table (spec section 6: the arena and its data table are assembled by the
// caller -- cmd/thrustersim -- and handed in already configured).
func NewServer(addr string, a arena.Arena, data *motordata.Table) *Server {
	return &Server{
		addr:    addr,
		arena:   a,
		data:    data,
		clients: make(map[*websocket.Conn]chan []arena.OptimizationOutput),
	}
}

// Serve blocks, serving the API until the listener fails.
func (s *Server) Serve() error {
	r := mux.NewRouter()
	r.HandleFunc("/arena/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/arena/step", s.handleStep).Methods(http.MethodPost)
	r.HandleFunc("/arena/{id:[0-9]+}", s.handleLookup).Methods(http.MethodGet)
	r.HandleFunc("/motors", s.handleMotors).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebsocket)

	return http.ListenAndServe(s.addr, r)
}

type resetRequest struct {
	PointCount int                  `json:"pointCount"`
	Heuristic  config.HeuristicSpec `json:"heuristic"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	settings := heuristic.DefaultToggleableSettings().Flatten()
	if req.Heuristic != (config.HeuristicSpec{}) {
		settings = req.Heuristic.ToSettings()
	}

	s.arena.Reset(req.PointCount, settings)
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	outputs := s.arena.Step(s.data)

	s.mu.Lock()
	s.last = outputs
	s.mu.Unlock()

	s.broadcast(outputs)

	writeJSON(w, outputs)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	idx, ok := s.arena.LookupIndex(id)
	if !ok {
		http.Error(w, "unknown id", http.StatusNotFound)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx < 0 || idx >= len(s.last) {
		http.Error(w, "id not present in last ranking", http.StatusNotFound)
		return
	}
	writeJSON(w, s.last[idx])
}

func (s *Server) handleMotors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.data.Records())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("apiserver: encode response:", err)
	}
}

// handleWebsocket upgrades the connection and registers it to receive the
// ranked outputs of every future step, until the client disconnects.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("apiserver: upgrade:", err)
		return
	}

	updates := make(chan []arena.OptimizationOutput, 1)
	s.registerClient(ws, updates)
	defer s.unregisterClient(ws)

	go s.readPump(ws)
	s.writePump(ws, updates)
}

func (s *Server) registerClient(ws *websocket.Conn, updates chan []arena.OptimizationOutput) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[ws] = updates
}

func (s *Server) unregisterClient(ws *websocket.Conn) {
	s.clientsMu.Lock()
	delete(s.clients, ws)
	s.clientsMu.Unlock()
	s.closeWebsocket(ws)
}

// broadcast fans the latest ranked outputs out to every registered
// client, dropping the update for any client whose channel is still full
// rather than blocking the step path on a slow reader.
func (s *Server) broadcast(outputs []arena.OptimizationOutput) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- outputs:
		default:
		}
	}
}

// readPump drains and discards client frames, keeping the read deadline
// alive via pong receipt; this connection is push-only from the server's
// side.
func (s *Server) readPump(ws *websocket.Conn) {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pushes ranked outputs as they arrive and pings on an idle
// timer, mirroring the teacher's single-client publish loop generalised
// to a per-client channel.
func (s *Server) writePump(ws *websocket.Conn, updates chan []arena.OptimizationOutput) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case outputs := <-updates:
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteJSON(outputs); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}
