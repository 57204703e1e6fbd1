package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub gerencia conexões WebSocket e assinaturas de atualizações de carteira
// subs: mapeia uid para o conjunto de conexões inscritas
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// uid -> set of connections
	subs map[string]map[*websocket.Conn]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*websocket.Conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe por uid e responde a pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.UID]; !ok {
				h.subs[msg.UID] = make(map[*websocket.Conn]struct{})
			}
			h.subs[msg.UID][conn] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.UID]; ok {
				delete(m, conn)
				if len(m) == 0 {
					delete(h.subs, msg.UID)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
		}
	}

	// remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for uid, m := range h.subs {
		delete(m, conn)
		if len(m) == 0 {
			delete(h.subs, uid)
		}
	}
	h.mu.Unlock()
}

// Broadcast envia a atualização para todos os clientes inscritos no uid
func (h *Hub) Broadcast(upd WalletUpdate) {
	b, err := json.Marshal(upd)
	if err != nil {
		return
	}
	h.mu.RLock()
	conns := h.subs[upd.UID]
	for conn := range conns {
		_ = conn.WriteMessage(websocket.TextMessage, b)
	}
	h.mu.RUnlock()
}
