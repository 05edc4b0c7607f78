// Package server is the reactive web UI: a websocket-pushed grid view
// over an engine.Engine, with the same Server/UpdateRequest/
// UpdateResponse/broadcast shape as a typical gorilla/websocket push
// service, rewired onto the formula engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/marcgallego/spreadsheet/engine"
	"github.com/marcgallego/spreadsheet/persistence"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // local dev / single-user tool
}

// Server serves a grid UI over websockets for a single engine.
type Server struct {
	Eng      *engine.Engine
	SavePath string // optional; enables autosave in Run
	AssetDir string // static files (grid HTML/JS); defaults to "assets/spreadsheet"

	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

// New returns a server over eng. savePath may be empty to disable
// autosave/persistence entirely.
func New(eng *engine.Engine, savePath string) *Server {
	return &Server{
		Eng:      eng,
		SavePath: savePath,
		AssetDir: "assets/spreadsheet",
		clients:  make(map[*websocket.Conn]bool),
	}
}

// UpdateRequest is a client -> server websocket message.
type UpdateRequest struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value"`
}

// UpdateResponse is a server -> client websocket message.
type UpdateResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Value   string `json:"value"`
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error:", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	s.sendInitialState(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var req UpdateRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Println("bad update request:", err)
			continue
		}

		switch req.Type {
		case "update_cell":
			s.handleUpdate(req)
		case "clear":
			s.Eng.Sheet.Clear()
			s.broadcastAll()
		}
	}
}

func (s *Server) handleUpdate(req UpdateRequest) {
	if err := s.Eng.SetCell(req.ID, req.Value); err != nil {
		log.Printf("set cell %s failed: %v", req.ID, err)
		// still broadcast req.ID so the client can show the rejected
		// edit's error instead of silently reverting
		resp := s.responseFor(req.ID)
		resp.Error = err.Error()
		s.writeAll(resp)
		return
	}

	affected, err := s.Eng.AffectedBy(req.ID)
	if err != nil {
		log.Printf("affected-by %s failed: %v", req.ID, err)
		return
	}
	s.broadcastIDs(affected)
}

func (s *Server) sendInitialState(conn *websocket.Conn) {
	for _, c := range s.Eng.Sheet.Occupied() {
		resp := s.responseFor(c.ToID())
		if err := conn.WriteJSON(resp); err != nil {
			log.Println("initial state write failed:", err)
			return
		}
	}
}

func (s *Server) broadcastAll() {
	resetMsg := UpdateResponse{Type: "reset"}
	s.writeAll(resetMsg)
	for _, c := range s.Eng.Sheet.Occupied() {
		s.writeAll(s.responseFor(c.ToID()))
	}
}

func (s *Server) broadcastIDs(ids []string) {
	for _, id := range ids {
		s.writeAll(s.responseFor(id))
	}
}

func (s *Server) writeAll(resp UpdateResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		if err := client.WriteJSON(resp); err != nil {
			log.Println("broadcast write failed:", err)
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}

func (s *Server) responseFor(id string) UpdateResponse {
	display, err := s.Eng.GetCellString(id)
	formula, _ := s.Eng.GetFormulaExpression(id)
	raw := formula
	if raw == "" {
		raw = display
	}
	resp := UpdateResponse{Type: "cell_updated", ID: id, Value: raw, Display: display}
	if err != nil {
		resp.Display = "#ERROR"
		resp.Error = err.Error()
	}
	return resp
}

// Run serves the HTTP/websocket endpoints on addr and, if SavePath is
// set, autosaves the sheet on a ticker, both under one errgroup: a
// listener failure cancels the group, which stops the autosave loop,
// while a failed autosave is only logged and the server keeps
// running -- the generalization of the
// teacher's bare http.ListenAndServe call into the pack's idiom for a
// coordinated goroutine lifetime (golang.org/x/sync/errgroup).
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()

	if _, err := os.Stat(s.AssetDir); os.IsNotExist(err) {
		log.Printf("warning: static asset directory %s not found", s.AssetDir)
	}
	mux.Handle("/", http.FileServer(http.Dir(s.AssetDir)))
	mux.HandleFunc("/ws", s.HandleWebSocket)

	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("starting spreadsheet server at http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("spreadsheet server: %w", err)
		}
		return nil
	})

	if s.SavePath != "" {
		g.Go(func() error { return s.autosave(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		return httpServer.Shutdown(context.Background())
	})

	return g.Wait()
}

func (s *Server) autosave(ctx context.Context) error {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := persistence.Save(s.Eng, s.SavePath); err != nil {
				log.Printf("autosave to %s failed: %v", s.SavePath, err)
			}
		}
	}
}
