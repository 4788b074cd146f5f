package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/pipeline/steps"
)

type brokenWriter struct {
	*httptest.ResponseRecorder
	writes int
}

func (b *brokenWriter) Write([]byte) (int, error) {
	b.writes++
	return 0, errors.New("broken pipe")
}

type plainWriter struct {
	header http.Header
}

func (p *plainWriter) Header() http.Header { return p.header }

func (p *plainWriter) Write(b []byte) (int, error) { return len(b), nil }

func (p *plainWriter) WriteHeader(int) {}

func TestProgressStream(t *testing.T) {
	rec := httptest.NewRecorder()
	stream, err := newProgressStream(rec, zap.NewNop())
	require.NoError(t, err)

	stream.Step(pipeline.ProgressEvent{Stage: steps.AnalyzeGap, Status: pipeline.StatusCompleted})
	stream.Fail("boom")

	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	events := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n\n"), "\n\n")
	require.Len(t, events, 2)
	assert.Equal(t, "id: 1\nevent: step\ndata: {\"step\":\"analyze_gap\",\"category\":\"\",\"status\":\"completed\",\"message\":\"\"}", events[0])
	assert.Equal(t, "id: 2\nevent: error\ndata: {\"error\":\"boom\"}", events[1])
}

func TestProgressStream_StopsAfterWriteFailure(t *testing.T) {
	w := &brokenWriter{ResponseRecorder: httptest.NewRecorder()}
	stream, err := newProgressStream(w, zap.NewNop())
	require.NoError(t, err)

	stream.Step(pipeline.ProgressEvent{Stage: steps.ParseCandidate, Status: pipeline.StatusStarted})
	stream.Step(pipeline.ProgressEvent{Stage: steps.ParseCandidate, Status: pipeline.StatusCompleted})
	stream.Complete(uuid.New())

	assert.Equal(t, 1, w.writes)
}

func TestProgressStream_RequiresFlusher(t *testing.T) {
	_, err := newProgressStream(&plainWriter{header: http.Header{}}, zap.NewNop())
	assert.ErrorIs(t, err, errStreamingUnsupported)
}
