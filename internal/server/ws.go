package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"StockLens/internal/dashboard"
	"StockLens/internal/model"
)

var wsUpgrader = websocket.Upgrader{
	// the page is served from this process on a local address
	CheckOrigin: func(*http.Request) bool { return true },
}

// inMsg is what the page sends after every widget change.
type inMsg struct {
	Type      string   `json:"type"` // "select"
	Category  string   `json:"category"`
	Symbols   []string `json:"symbols"`
	ChartType string   `json:"chart_type"`
}

type helloMsg struct {
	Type       string   `json:"type"` // "hello"
	ID         string   `json:"id"`
	Categories []string `json:"categories"`
}

type chartMsg struct {
	Type string         `json:"type"` // "chart"
	View dashboard.View `json:"view"`
}

type wsErrorMsg struct {
	Type  string `json:"type"` // "error"
	Error string `json:"error"`
}

type client struct {
	id   string
	c    *websocket.Conn
	out  chan any
	done chan struct{}
}

func (cl *client) send(v any) {
	select {
	case cl.out <- v:
	default:
		log.Printf("[WARN] ws %s: send buffer full, dropping message", cl.id)
	}
}

type hub struct {
	mu      sync.Mutex
	clients map[string]*client
}

func newHub() *hub {
	return &hub{clients: make(map[string]*client)}
}

func (h *hub) add(cl *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[cl.id] = cl
	return len(h.clients)
}

func (h *hub) remove(cl *client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, cl.id)
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, cl := range h.clients {
		_ = cl.c.Close()
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	cl := &client{id: uuid.NewString(), c: conn, out: make(chan any, 16), done: make(chan struct{})}
	n := s.hub.add(cl)
	log.Printf("[INFO] ws %s connected (%d open)", cl.id, n)
	defer func() {
		close(cl.done)
		n := s.hub.remove(cl)
		log.Printf("[INFO] ws %s closed (%d open)", cl.id, n)
	}()

	// writer
	go func() {
		ping := time.NewTicker(45 * time.Second)
		defer ping.Stop()
		for {
			select {
			case v := <-cl.out:
				if err := conn.WriteJSON(v); err != nil {
					log.Printf("[WARN] ws %s write: %v", cl.id, err)
					return
				}
			case <-ping.C:
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			case <-cl.done:
				return
			}
		}
	}()

	cl.send(helloMsg{Type: "hello", ID: cl.id, Categories: ds.Categories()})

	// reader
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		if mt != websocket.TextMessage {
			continue
		}
		cl.send(s.handleWSMessage(data))
	}
}

func (s *Server) handleWSMessage(data []byte) any {
	var msg inMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return wsErrorMsg{Type: "error", Error: "bad json: " + err.Error()}
	}
	if msg.Type != "select" {
		return wsErrorMsg{Type: "error", Error: "unknown message type " + msg.Type}
	}
	return s.selectView(msg)
}

func (s *Server) selectView(msg inMsg) any {
	ds, err := s.cache.Get()
	if err != nil {
		return wsErrorMsg{Type: "error", Error: err.Error()}
	}
	sel := model.FilterSelection{Category: msg.Category, Symbols: msg.Symbols}
	if msg.ChartType != "" {
		ct, err := model.ParseChartType(msg.ChartType)
		if err != nil {
			return wsErrorMsg{Type: "error", Error: err.Error()}
		}
		sel.ChartType = ct
	}
	sel, err = s.normalize(ds, sel)
	if err != nil {
		return wsErrorMsg{Type: "error", Error: err.Error()}
	}
	v, err := dashboard.Build(ds, sel)
	if err != nil {
		return wsErrorMsg{Type: "error", Error: err.Error()}
	}
	return chartMsg{Type: "chart", View: v}
}
