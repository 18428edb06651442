// Package websocket streams exchange reports to websocket clients.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/report"
)

// ClientBacklog is the number of reports queued per client before
// dropping.
const ClientBacklog = 64

// Hub broadcasts JSON records to connected clients.
// It is both an http.Handler and an exchange.Sink.
type Hub struct {
	Source string

	lock    sync.RWMutex
	clients map[chan []byte]struct{}
	handler http.Handler
}

// NewHub creates a Hub.
func NewHub(source string) *Hub {
	h := &Hub{Source: source, clients: make(map[chan []byte]struct{})}
	h.handler = websocket.Handler(h.serve)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// Report implements exchange.Sink. Slow clients miss reports rather than
// stalling the exchange loop.
func (h *Hub) Report(ctx context.Context, o exchange.Outcome) {
	msg, err := json.Marshal(report.NewRecord(h.Source, o))
	if err != nil {
		glog.Errorf("encode report: %v", err)
		return
	}
	h.lock.RLock()
	defer h.lock.RUnlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			glog.V(3).Info("websocket client lagging, report dropped")
		}
	}
}

func (h *Hub) serve(conn *websocket.Conn) {
	defer conn.Close()
	ch := make(chan []byte, ClientBacklog)
	h.lock.Lock()
	h.clients[ch] = struct{}{}
	h.lock.Unlock()
	defer func() {
		h.lock.Lock()
		delete(h.clients, ch)
		h.lock.Unlock()
	}()

	glog.V(2).Infof("websocket client %s connected", conn.Request().RemoteAddr)
	closed := make(chan struct{})
	go func() {
		// drain incoming frames to detect disconnection.
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
		close(closed)
	}()
	for {
		select {
		case msg := <-ch:
			if err := websocket.Message.Send(conn, string(msg)); err != nil {
				glog.V(2).Infof("websocket send: %v", err)
				return
			}
		case <-closed:
			glog.V(2).Infof("websocket client %s disconnected", conn.Request().RemoteAddr)
			return
		}
	}
}
