package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"note-editor-be/internal/entity"
	"note-editor-be/internal/pkg/logger"
	"note-editor-be/internal/store"
	"note-editor-be/pkg/enrichment"
	"note-editor-be/pkg/events"

	"github.com/patrickmn/go-cache"
)

var (
	ErrNoOperationSelected = errors.New("no enrichment operation selected")
	ErrUnknownOperation    = errors.New("unknown enrichment operation")
	ErrMissingCredential   = errors.New("enrichment credential not configured")
	ErrEmptyContent        = errors.New("document content is empty")
)

type IEnrichmentService interface {
	ActiveDocumentListener

	SwitchOperation(ctx context.Context, operation string) error
	Run(ctx context.Context) error
	Panel() entity.Panel
}

// job is the transient state of one in-flight enrichment run. It exists only
// between submission and terminal resolution and is never persisted.
type job struct {
	statusURL string
	operation enrichment.Operation
	document  string
	language  string
	cacheKey  string
	resultKey string
	apiKey    string
	retries   int
	gen       uint64
}

type enrichmentService struct {
	store        *store.PersistentStore
	client       *enrichment.Client
	publisher    IPublisherService
	log          logger.ILogger
	pollInterval time.Duration
	maxPolls     int

	mu        sync.Mutex
	activeOp  enrichment.Operation
	activeDoc string
	panel     entity.Panel
	results   *cache.Cache
	pollTimer *time.Timer
	runGen    uint64
}

const (
	DefaultPollInterval = 3 * time.Second
	DefaultMaxPolls     = 10
)

func NewEnrichmentService(
	st *store.PersistentStore,
	client *enrichment.Client,
	publisher IPublisherService,
	log logger.ILogger,
	pollInterval time.Duration,
	maxPolls int,
) IEnrichmentService {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if maxPolls <= 0 {
		maxPolls = DefaultMaxPolls
	}
	return &enrichmentService{
		store:        st,
		client:       client,
		publisher:    publisher,
		log:          log,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
		// Volatile result cache; cleared on restart. Persisted copies live
		// in the store under per-document-per-operation keys.
		results: cache.New(1*time.Hour, 10*time.Minute),
		panel:   entity.Panel{Status: entity.PanelIdle},
	}
}

func (s *enrichmentService) Panel() entity.Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

// SwitchOperation changes the selected operation and reloads whatever result
// already exists for the new (operation, document) pair. Never triggers a
// network call.
func (s *enrichmentService) SwitchOperation(ctx context.Context, operation string) error {
	op, ok := enrichment.ParseOperation(operation)
	if !ok {
		return ErrUnknownOperation
	}

	s.mu.Lock()
	s.activeOp = op
	s.cancelPollingLocked()
	s.reloadPanelLocked(ctx)
	s.mu.Unlock()
	return nil
}

// SetActiveDocument follows the session's selection. Any in-flight poll for
// the previous document is cancelled; its timer must never deliver into a
// panel that now belongs to a different document.
func (s *enrichmentService) SetActiveDocument(ctx context.Context, documentId string) {
	s.mu.Lock()
	s.activeDoc = documentId
	s.cancelPollingLocked()
	s.reloadPanelLocked(ctx)
	s.mu.Unlock()
}

// ClearPanelFor blanks the panel if it currently shows the given document.
// Called by the session manager just before a document is deleted.
func (s *enrichmentService) ClearPanelFor(documentId string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.panel.DocumentId == documentId {
		s.cancelPollingLocked()
		s.panel = entity.Panel{Status: entity.PanelIdle}
	}
}

// Run executes the selected operation against the active document's text.
// Validation failures are returned to the caller; transport, job and timeout
// failures land in the panel. A cached result short-circuits the network
// entirely.
func (s *enrichmentService) Run(ctx context.Context) error {
	s.mu.Lock()

	if s.activeOp == "" {
		s.mu.Unlock()
		return ErrNoOperationSelected
	}
	op := s.activeOp
	docId := s.activeDoc
	if docId == "" {
		s.mu.Unlock()
		return ErrNoActiveDoc
	}

	// Only one run may be in flight; a new one supersedes the old.
	s.cancelPollingLocked()
	s.mu.Unlock()

	apiKey, err := s.store.Read(ctx, store.KeyAPIKey, "")
	if err != nil {
		return err
	}
	if apiKey == "" {
		return ErrMissingCredential
	}

	text, err := s.store.Read(ctx, docId, "")
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyContent
	}

	language := ""
	if op == enrichment.OpTranslate {
		language, err = s.store.Read(ctx, store.KeyTranslationLanguage, "en")
		if err != nil {
			return err
		}
	}

	cacheKey := fingerprint(op, docId, language, text)
	resultKey := store.ResultKey(docId, string(op), language)

	if cached, found := s.results.Get(cacheKey); found {
		result := cached.(string)
		s.mu.Lock()
		s.panel = entity.Panel{
			DocumentId: docId,
			Operation:  string(op),
			Status:     entity.PanelDone,
			Content:    result,
		}
		s.mu.Unlock()
		s.store.Write(resultKey, result)
		return nil
	}

	s.mu.Lock()
	s.panel = entity.Panel{
		DocumentId: docId,
		Operation:  string(op),
		Status:     entity.PanelWorking,
	}
	gen := s.runGen
	s.mu.Unlock()

	statusURL, err := s.client.Submit(ctx, apiKey, op, text, language)
	if err != nil {
		s.setPanelError(gen, docId, op, err.Error())
		return nil
	}

	j := &job{
		statusURL: statusURL,
		operation: op,
		document:  docId,
		language:  language,
		cacheKey:  cacheKey,
		resultKey: resultKey,
		apiKey:    apiKey,
		gen:       gen,
	}
	s.schedulePoll(j)
	return nil
}

func (s *enrichmentService) schedulePoll(j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.gen != s.runGen {
		return // superseded while we were off the lock
	}
	s.pollTimer = time.AfterFunc(s.pollInterval, func() {
		s.poll(j)
	})
}

func (s *enrichmentService) poll(j *job) {
	s.mu.Lock()
	if j.gen != s.runGen {
		s.mu.Unlock()
		return
	}
	if j.retries >= s.maxPolls {
		s.panel = entity.Panel{
			DocumentId: j.document,
			Operation:  string(j.operation),
			Status:     entity.PanelError,
			Message:    fmt.Sprintf("enrichment timed out after %d polls", s.maxPolls),
		}
		s.pollTimer = nil
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	status, err := s.client.Status(context.Background(), j.apiKey, j.statusURL)
	if err != nil {
		s.setPanelError(j.gen, j.document, j.operation, err.Error())
		return
	}

	switch {
	case status.Succeeded():
		result, rerr := status.Result(j.operation)
		if rerr != nil {
			s.setPanelError(j.gen, j.document, j.operation, rerr.Error())
			return
		}
		s.deliverResult(j, result)

	case status.Failed():
		msg := status.Error
		if msg == "" {
			msg = "enrichment job failed"
		}
		s.setPanelError(j.gen, j.document, j.operation, msg)

	default:
		j.retries++
		s.schedulePoll(j)
	}
}

func (s *enrichmentService) deliverResult(j *job, result string) {
	s.mu.Lock()
	if j.gen != s.runGen {
		s.mu.Unlock()
		return
	}
	s.panel = entity.Panel{
		DocumentId: j.document,
		Operation:  string(j.operation),
		Status:     entity.PanelDone,
		Content:    result,
	}
	s.results.Set(j.cacheKey, result, cache.DefaultExpiration)
	s.pollTimer = nil
	s.mu.Unlock()

	s.store.Write(j.resultKey, result)

	if s.publisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeEnrichmentCompleted,
			Data: map[string]interface{}{
				"document_id": j.document,
				"operation":   string(j.operation),
			},
			OccurredAt: time.Now(),
		}
		if err := s.publisher.Publish(context.Background(), evt); err != nil {
			s.log.Warn("enrichment", "failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// setPanelError renders a failure inline. It never touches session or
// history state, and any previously cached/persisted result stays intact.
func (s *enrichmentService) setPanelError(gen uint64, docId string, op enrichment.Operation, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.runGen {
		return
	}
	s.panel = entity.Panel{
		DocumentId: docId,
		Operation:  string(op),
		Status:     entity.PanelError,
		Message:    msg,
	}
	s.pollTimer = nil
}

// cancelPollingLocked invalidates every outstanding poll timer. Stale timers
// observe the generation bump and drop their delivery.
func (s *enrichmentService) cancelPollingLocked() {
	s.runGen++
	if s.pollTimer != nil {
		s.pollTimer.Stop()
		s.pollTimer = nil
	}
}

// reloadPanelLocked shows the existing result for the current (operation,
// document) pair: volatile cache first, then the persisted result key.
func (s *enrichmentService) reloadPanelLocked(ctx context.Context) {
	if s.activeOp == "" || s.activeDoc == "" {
		s.panel = entity.Panel{Status: entity.PanelIdle}
		return
	}

	language := ""
	if s.activeOp == enrichment.OpTranslate {
		language, _ = s.store.Read(ctx, store.KeyTranslationLanguage, "en")
	}

	text, err := s.store.Read(ctx, s.activeDoc, "")
	if err == nil && text != "" {
		cacheKey := fingerprint(s.activeOp, s.activeDoc, language, text)
		if cached, found := s.results.Get(cacheKey); found {
			s.panel = entity.Panel{
				DocumentId: s.activeDoc,
				Operation:  string(s.activeOp),
				Status:     entity.PanelDone,
				Content:    cached.(string),
			}
			return
		}
	}

	persisted, err := s.store.Read(ctx, store.ResultKey(s.activeDoc, string(s.activeOp), language), "")
	if err == nil && persisted != "" {
		s.panel = entity.Panel{
			DocumentId: s.activeDoc,
			Operation:  string(s.activeOp),
			Status:     entity.PanelDone,
			Content:    persisted,
		}
		return
	}

	s.panel = entity.Panel{
		DocumentId: s.activeDoc,
		Operation:  string(s.activeOp),
		Status:     entity.PanelIdle,
	}
}

// fingerprint builds the cache key from operation, document, language and a
// fixed-width digest of the source text. Raw content in the key would grow
// unboundedly and leak full text into key space.
func fingerprint(op enrichment.Operation, docId, language, text string) string {
	digest := sha256.Sum256([]byte(text))
	if language != "" {
		return fmt.Sprintf("%s:%s:%s:%x", op, docId, language, digest)
	}
	return fmt.Sprintf("%s:%s:%x", op, docId, digest)
}
