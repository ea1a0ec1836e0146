package progrock_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vito "github.com/vito/progrock"
	"go.trai.ch/ferry/internal/adapters/telemetry/progrock"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
)

// tapeWriter captures every status update written by the recorder.
type tapeWriter struct {
	mu      sync.Mutex
	updates []*vito.StatusUpdate
	closed  bool
}

func (w *tapeWriter) WriteStatus(u *vito.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updates = append(w.updates, u)
	return nil
}

func (w *tapeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// last returns the latest state of the vertex with the given name.
func (w *tapeWriter) last(name string) *vito.Vertex {
	w.mu.Lock()
	defer w.mu.Unlock()
	var found *vito.Vertex
	for _, u := range w.updates {
		for _, v := range u.Vertexes {
			if v.Name == name {
				found = v
			}
		}
	}
	return found
}

func (w *tapeWriter) logs() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var b strings.Builder
	for _, u := range w.updates {
		for _, l := range u.Logs {
			b.Write(l.Data)
		}
	}
	return b.String()
}

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_GroupedVertex(t *testing.T) {
	tape := &tapeWriter{}
	recorder := progrock.NewRecorder(tape)

	ctx, vertex := recorder.Record(context.Background(), "script", ports.WithGroup("#1 linux/stable"))
	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, fromCtx)

	_, err := vertex.Stdout().Write([]byte("compiling\n"))
	require.NoError(t, err)
	vertex.Log(domain.LogLevelWarn, "slow test")
	vertex.Complete(nil)

	v := tape.last("#1 linux/stable / script")
	require.NotNil(t, v)
	assert.NotNil(t, v.Completed)
	assert.Nil(t, v.Error)
	assert.Contains(t, tape.logs(), "compiling")
	assert.Contains(t, tape.logs(), "[WARN] slow test")

	require.NoError(t, recorder.Close())
	assert.True(t, tape.closed)
}

func TestRecorder_FailedAndSkipped(t *testing.T) {
	tape := &tapeWriter{}
	recorder := progrock.NewRecorder(tape)

	_, failed := recorder.Record(context.Background(), "install")
	failed.Complete(errors.New("exit status 1"))

	_, skipped := recorder.Record(context.Background(), "before_deploy")
	skipped.Skipped()

	f := tape.last("install")
	require.NotNil(t, f)
	require.NotNil(t, f.Error)
	assert.Contains(t, *f.Error, "exit status 1")

	s := tape.last("before_deploy")
	require.NotNil(t, s)
	assert.True(t, s.Cached)
	assert.NotNil(t, s.Completed)
}
