package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonathan/consultant-match/internal/pipeline"
	"github.com/jonathan/consultant-match/internal/types"
)

// Stream event names
const (
	eventProgress = "progress"
	eventResult   = "result"
	eventComplete = "complete"
	eventError    = "error"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// matchStream writes a match run as Server-Sent Events. Progress callbacks may
// arrive from pipeline goroutines, so writes are serialized.
type matchStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

func newMatchStream(w http.ResponseWriter) (*matchStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &matchStream{w: w, flusher: flusher}, nil
}

func (s *matchStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Progress reports a pipeline step. Step content is dropped; the result event carries it.
func (s *matchStream) Progress(event pipeline.ProgressEvent) error {
	event.Content = nil
	return s.send(eventProgress, event)
}

func (s *matchStream) Result(results *types.MatchResults) error {
	return s.send(eventResult, results)
}

func (s *matchStream) Complete(results *types.MatchResults) error {
	return s.send(eventComplete, map[string]any{
		"run_id":  results.RunID,
		"results": len(results.Results),
	})
}

// Fail ends the stream with an error event carrying the HTTP status the
// request would have had without streaming.
func (s *matchStream) Fail(status int, message string) error {
	return s.send(eventError, map[string]any{
		"status": status,
		"error":  message,
	})
}
