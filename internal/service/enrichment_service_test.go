package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"note-editor-be/internal/entity"
	"note-editor-be/internal/repository/memory"
	"note-editor-be/internal/store"
	"note-editor-be/pkg/enrichment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enrichmentStub plays the external service: one submit endpoint per
// operation plus a shared status endpoint whose payload the test controls.
type enrichmentStub struct {
	server      *httptest.Server
	submits     atomic.Int64
	statusCalls atomic.Int64
	status      atomic.Value // JobStatus payload as JSON string
}

func newEnrichmentStub(t *testing.T) *enrichmentStub {
	t.Helper()
	stub := &enrichmentStub{}
	stub.status.Store(`{"status":"pending"}`)

	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		stub.statusCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(stub.status.Load().(string)))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		stub.submits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status_url": stub.server.URL + "/status",
		})
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *enrichmentStub) setStatus(payload string) {
	s.status.Store(payload)
}

func newEnrichmentFixture(t *testing.T, stub *enrichmentStub, maxPolls int) (IEnrichmentService, *store.PersistentStore) {
	t.Helper()
	st := store.NewPersistentStore(memory.NewBackingStore(), nopLogger{}, time.Minute)
	svc := NewEnrichmentService(
		st,
		enrichment.NewClient(stub.server.URL),
		nopPublisher{},
		nopLogger{},
		15*time.Millisecond,
		maxPolls,
	)
	return svc, st
}

func panelStatus(svc IEnrichmentService) entity.PanelStatus {
	return svc.Panel().Status
}

func TestRunValidation(t *testing.T) {
	stub := newEnrichmentStub(t)
	svc, st := newEnrichmentFixture(t, stub, 10)
	ctx := context.Background()

	// No operation selected yet.
	assert.ErrorIs(t, svc.Run(ctx), ErrNoOperationSelected)

	assert.ErrorIs(t, svc.SwitchOperation(ctx, "levitate"), ErrUnknownOperation)
	require.NoError(t, svc.SwitchOperation(ctx, "summarize"))

	// No active document.
	assert.ErrorIs(t, svc.Run(ctx), ErrNoActiveDoc)

	svc.SetActiveDocument(ctx, "doc-1")

	// No credential configured.
	assert.ErrorIs(t, svc.Run(ctx), ErrMissingCredential)

	st.Write(store.KeyAPIKey, "secret-key")

	// Blank content.
	st.Write("doc-1", "   \n\t  ")
	assert.ErrorIs(t, svc.Run(ctx), ErrEmptyContent)

	assert.Equal(t, int64(0), stub.submits.Load(), "validation failures must not reach the network")
}

func TestRunDeliversResult(t *testing.T) {
	stub := newEnrichmentStub(t)
	svc, st := newEnrichmentFixture(t, stub, 10)
	ctx := context.Background()

	require.NoError(t, svc.SwitchOperation(ctx, "summarize"))
	svc.SetActiveDocument(ctx, "doc-1")
	st.Write(store.KeyAPIKey, "secret-key")
	st.Write("doc-1", "a long article about compilers")

	stub.setStatus(`{"status":"completed","summary":"compilers, briefly"}`)
	require.NoError(t, svc.Run(ctx))

	assert.Equal(t, entity.PanelWorking, panelStatus(svc), "panel shows progress while polling")

	assert.Eventually(t, func() bool {
		return panelStatus(svc) == entity.PanelDone
	}, time.Second, 2*time.Millisecond)

	panel := svc.Panel()
	assert.Equal(t, "compilers, briefly", panel.Content)
	assert.Equal(t, "doc-1", panel.DocumentId)
	assert.Equal(t, "summarize", panel.Operation)

	persisted, err := st.Read(ctx, store.ResultKey("doc-1", "summarize", ""), "")
	require.NoError(t, err)
	assert.Equal(t, "compilers, briefly", persisted)
}

func TestRunServesRepeatFromCache(t *testing.T) {
	stub := newEnrichmentStub(t)
	svc, st := newEnrichmentFixture(t, stub, 10)
	ctx := context.Background()

	require.NoError(t, svc.SwitchOperation(ctx, "keywords"))
	svc.SetActiveDocument(ctx, "doc-1")
	st.Write(store.KeyAPIKey, "secret-key")
	st.Write("doc-1", "go, concurrency, channels")

	stub.setStatus(`{"status":"completed","keywords":["go","channels"]}`)
	require.NoError(t, svc.Run(ctx))
	require.Eventually(t, func() bool {
		return panelStatus(svc) == entity.PanelDone
	}, time.Second, 2*time.Millisecond)

	submits := stub.submits.Load()
	statusCalls := stub.statusCalls.Load()

	// Same operation, same text: served from cache, zero network traffic.
	require.NoError(t, svc.Run(ctx))
	assert.Equal(t, entity.PanelDone, panelStatus(svc))
	assert.Equal(t, "go, channels", svc.Panel().Content)
	assert.Equal(t, submits, stub.submits.Load())
	assert.Equal(t, statusCalls, stub.statusCalls.Load())

	// Changed text invalidates the fingerprint and resubmits.
	st.Write("doc-1", "a different article entirely")
	require.NoError(t, svc.Run(ctx))
	assert.Eventually(t, func() bool {
		return stub.submits.Load() == submits+1
	}, time.Second, 2*time.Millisecond)
}

func TestRunTimesOutAfterMaxPolls(t *testing.T) {
	stub := newEnrichmentStub(t)
	svc, st := newEnrichmentFixture(t, stub, 3)
	ctx := context.Background()

	require.NoError(t, svc.SwitchOperation(ctx, "proofread"))
	svc.SetActiveDocument(ctx, "doc-1")
	st.Write(store.KeyAPIKey, "secret-key")
	st.Write("doc-1", "text that never finishes processing")

	// Status stays pending forever.
	require.NoError(t, svc.Run(ctx))

	assert.Eventually(t, func() bool {
		return panelStatus(svc) == entity.PanelError
	}, time.Second, 2*time.Millisecond)

	assert.Contains(t, svc.Panel().Message, "timed out")
	assert.Equal(t, int64(3), stub.statusCalls.Load(), "polling stops after maxPolls status reads")
}

func TestRunReportsJobFailure(t *testing.T) {
	stub := newEnrichmentStub(t)
	svc, st := newEnrichmentFixture(t, stub, 10)
	ctx := context.Background()

	require.NoError(t, svc.SwitchOperation(ctx, "paraphrase"))
	svc.SetActiveDocument(ctx, "doc-1")
	st.Write(store.KeyAPIKey, "secret-key")
	st.Write("doc-1", "text the service dislikes")

	stub.setStatus(`{"status":"failed","error":"unsupported language"}`)
	require.NoError(t, svc.Run(ctx))

	assert.Eventually(t, func() bool {
		return panelStatus(svc) == entity.PanelError
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, "unsupported language", svc.Panel().Message)
}

func TestSwitchOperationReloadsPersistedResult(t *testing.T) {
	stub := newEnrichmentStub(t)
	svc, st := newEnrichmentFixture(t, stub, 10)
	ctx := context.Background()

	svc.SetActiveDocument(ctx, "doc-1")
	st.Write("doc-1", "the source text")
	st.Write(store.ResultKey("doc-1", "summarize", ""), "an earlier summary")

	require.NoError(t, svc.SwitchOperation(ctx, "summarize"))

	panel := svc.Panel()
	assert.Equal(t, entity.PanelDone, panel.Status)
	assert.Equal(t, "an earlier summary", panel.Content)
	assert.Equal(t, int64(0), stub.submits.Load(), "reload never hits the network")

	// No stored result for this pair: the panel goes idle.
	require.NoError(t, svc.SwitchOperation(ctx, "proofread"))
	assert.Equal(t, entity.PanelIdle, panelStatus(svc))
}

func TestSwitchingDocumentCancelsPolling(t *testing.T) {
	stub := newEnrichmentStub(t)
	svc, st := newEnrichmentFixture(t, stub, 1000)
	ctx := context.Background()

	require.NoError(t, svc.SwitchOperation(ctx, "summarize"))
	svc.SetActiveDocument(ctx, "doc-1")
	st.Write(store.KeyAPIKey, "secret-key")
	st.Write("doc-1", "slow job on the first document")
	st.Write("doc-2", "second document")

	require.NoError(t, svc.Run(ctx))
	require.Eventually(t, func() bool {
		return stub.statusCalls.Load() > 0
	}, time.Second, 2*time.Millisecond)

	svc.SetActiveDocument(ctx, "doc-2")
	calls := stub.statusCalls.Load()

	// The superseded job must stop polling and never repaint the panel.
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, stub.statusCalls.Load(), calls+1, "at most one in-flight poll may land after the switch")
	assert.Equal(t, "doc-2", svc.Panel().DocumentId)
	assert.Equal(t, entity.PanelIdle, panelStatus(svc))
}

func TestClearPanelFor(t *testing.T) {
	stub := newEnrichmentStub(t)
	svc, st := newEnrichmentFixture(t, stub, 10)
	ctx := context.Background()

	svc.SetActiveDocument(ctx, "doc-1")
	st.Write("doc-1", "the source text")
	st.Write(store.ResultKey("doc-1", "summarize", ""), "a summary")
	require.NoError(t, svc.SwitchOperation(ctx, "summarize"))
	require.Equal(t, entity.PanelDone, panelStatus(svc))

	svc.ClearPanelFor("other-doc")
	assert.Equal(t, entity.PanelDone, panelStatus(svc), "unrelated document must not blank the panel")

	svc.ClearPanelFor("doc-1")
	assert.Equal(t, entity.PanelIdle, panelStatus(svc))
}

func TestTranslateUsesConfiguredLanguage(t *testing.T) {
	stub := newEnrichmentStub(t)
	svc, st := newEnrichmentFixture(t, stub, 10)
	ctx := context.Background()

	require.NoError(t, svc.SwitchOperation(ctx, "translate"))
	svc.SetActiveDocument(ctx, "doc-1")
	st.Write(store.KeyAPIKey, "secret-key")
	st.Write(store.KeyTranslationLanguage, "fr")
	st.Write("doc-1", "good morning everyone")

	stub.setStatus(`{"status":"completed","translated_content":"bonjour à tous"}`)
	require.NoError(t, svc.Run(ctx))

	require.Eventually(t, func() bool {
		return panelStatus(svc) == entity.PanelDone
	}, time.Second, 2*time.Millisecond)

	persisted, err := st.Read(ctx, store.ResultKey("doc-1", "translate", "fr"), "")
	require.NoError(t, err)
	assert.Equal(t, "bonjour à tous", persisted)
}
