package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"simustruct/entity"
)

type streamClient struct {
	ws *websocket.Conn
	sync.Mutex
	events chan entity.LedgerEvent
}

// forwardEvents fans the economy's event stream out to all connected
// websocket clients. Slow clients miss events instead of blocking the
// fan-out.
func (s *server) forwardEvents() {
	for ev := range s.eco.Events() {
		s.streamClientsMu.RLock()
		for client := range s.streamClients {
			select {
			case client.events <- ev:
			default:
			}
		}
		s.streamClientsMu.RUnlock()
	}
}

func (s *server) addStreamClient(client *streamClient) {
	s.streamClientsMu.Lock()
	defer s.streamClientsMu.Unlock()
	s.streamClients[client] = struct{}{}
}

func (s *server) removeStreamClient(client *streamClient) {
	s.streamClientsMu.Lock()
	defer s.streamClientsMu.Unlock()
	delete(s.streamClients, client)
}

func (s *server) handleEventStream() gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		HandshakeTimeout: 2 * time.Second,
		WriteBufferSize:  1024,
	}

	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket handshake failed: %v", err)
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		defer ws.Close()

		client := &streamClient{
			ws:     ws,
			events: make(chan entity.LedgerEvent, 8),
		}

		s.addStreamClient(client)
		defer s.removeStreamClient(client)

		for ev := range client.events {
			if err := client.sendEvent(ev); err != nil {
				log.Printf("client %v send over websocket failed: %v", client.ws.RemoteAddr(), err)
				return
			}
		}
	}
}

func (client *streamClient) sendEvent(ev entity.LedgerEvent) error {
	client.Lock()
	defer client.Unlock()

	// enforce fast client readout
	client.ws.SetWriteDeadline(time.Now().Add(1 * time.Second))

	// don't forget to reset write timeout BEFORE lifting the lock
	defer client.ws.SetWriteDeadline(time.Time{})

	return client.ws.WriteJSON(ev)
}
