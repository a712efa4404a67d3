package chat

import (
	"log"
	"time"

	"motomarket/backend/internal/config"
	"motomarket/backend/internal/storage"
)

// ManagerService is the hub: it tracks connected clients by user id and
// runs periodic maintenance (the server-side typing sweep).
type ManagerService struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage storage.Storage
	Feed    Feed

	// SweepInterval / TypingStaleAfter default to the config constants;
	// tests shrink them before calling Run.
	SweepInterval    time.Duration
	TypingStaleAfter time.Duration
}

// NewManagerService wires the hub against the storage and feed boundaries.
func NewManagerService(s storage.Storage, f Feed) *ManagerService {
	return &ManagerService{
		Clients:          make(map[string]Client),
		RegisterCh:       make(chan Client),
		UnregisterCh:     make(chan Client),
		Storage:          s,
		Feed:             f,
		SweepInterval:    config.TypingSweepInterval,
		TypingStaleAfter: config.TypingStaleWindow,
	}
}

// Run is the hub's main goroutine.
func (m *ManagerService) Run() {
	ticker := time.NewTicker(m.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-m.RegisterCh:
			userID := client.GetUserID()
			if old, ok := m.Clients[userID]; ok {
				// One live connection per user; the newer one wins.
				old.Close()
			}
			m.Clients[userID] = client
			log.Printf("Client connected: %s", userID)

		case client := <-m.UnregisterCh:
			userID := client.GetUserID()
			if current, ok := m.Clients[userID]; ok && current == client {
				delete(m.Clients, userID)
				client.Close()
				log.Printf("Client disconnected: %s", userID)
			}

		case <-ticker.C:
			n, err := m.Storage.SweepStaleTyping(m.TypingStaleAfter)
			if err != nil {
				log.Printf("ERROR: Typing sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("Typing sweep removed %d stale indicators", n)
			}
		}
	}
}
