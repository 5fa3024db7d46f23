package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/oklog/ulid/v2"
)

// sseSession is one open GET /sse connection. Responses to requests
// posted against its sessionId are delivered here as SSE "message"
// events.
type sseSession struct {
	id   string
	send chan *JSONRPCResponse
	done chan struct{}
}

// SSEServer exposes the MCP server over HTTP using server-sent events:
// GET /sse opens a session and streams an "endpoint" event pointing the
// client at its POST URL, POST /messages?sessionId=... delivers one
// request and its response arrives over the open stream, and GET
// /health reports liveness for process supervisors.
type SSEServer struct {
	server *Server

	mu       sync.Mutex
	sessions map[string]*sseSession
}

// NewSSEServer wraps server for HTTP delivery.
func NewSSEServer(server *Server) *SSEServer {
	return &SSEServer{
		server:   server,
		sessions: make(map[string]*sseSession),
	}
}

// Handler returns the http.Handler to mount at the server root.
func (s *SSEServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sse", s.handleSSE)
	mux.HandleFunc("/messages", s.handleMessages)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *SSEServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sessionID := ulid.Make().String()
	sess := &sseSession{
		id:   sessionID,
		send: make(chan *JSONRPCResponse, 16),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[sessionID] = sess
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		close(sess.done)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: endpoint\ndata: /messages?sessionId=%s\n\n", sessionID)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case resp := <-sess.send:
			data, _ := json.Marshal(resp)
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *SSEServer) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp := s.server.Dispatch(r.Context(), &req)

	select {
	case sess.send <- resp:
	case <-sess.done:
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *SSEServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
