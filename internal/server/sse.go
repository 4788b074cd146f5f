package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
)

// SSE event names sent by the streaming pipeline endpoint.
const (
	eventStep     = "step"
	eventResult   = "result"
	eventError    = "error"
	eventComplete = "complete"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// progressStream writes pipeline progress as Server-Sent Events. Events carry
// increasing ids. After the first failed write the stream goes quiet, since the
// client is gone and the run continues regardless.
type progressStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	logger  *zap.Logger
	nextID  int
	broken  bool
}

func newProgressStream(w http.ResponseWriter, logger *zap.Logger) (*progressStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &progressStream{w: w, flusher: flusher, logger: logger}, nil
}

// Step is a pipeline.ProgressCallback.
func (p *progressStream) Step(event pipeline.ProgressEvent) {
	p.send(eventStep, event)
}

func (p *progressStream) Result(resp PipelineResponse) {
	p.send(eventResult, resp)
}

func (p *progressStream) Fail(message string) {
	p.send(eventError, map[string]string{"error": message})
}

func (p *progressStream) Complete(runID uuid.UUID) {
	p.send(eventComplete, map[string]string{"run_id": runID.String(), "status": "completed"})
}

func (p *progressStream) send(event string, data any) {
	if p.broken {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		p.logger.Warn("failed to encode SSE event", zap.String("event", event), zap.Error(err))
		return
	}

	p.nextID++
	if _, err := fmt.Fprintf(p.w, "id: %d\nevent: %s\ndata: %s\n\n", p.nextID, event, payload); err != nil {
		p.broken = true
		p.logger.Warn("client stopped reading SSE stream", zap.String("event", event), zap.Error(err))
		return
	}
	p.flusher.Flush()
}
