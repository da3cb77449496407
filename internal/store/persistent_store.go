package store

import (
	"context"
	"sync"
	"time"

	"note-editor-be/internal/pkg/logger"
	"note-editor-be/internal/repository/contract"
)

// Fixed keys. Document content is stored under the document id itself and
// enrichment results under ResultKey.
const (
	KeyTabs                = "tabs"
	KeyCurrentTabIndex     = "currentTabIndex"
	KeyAPIKey              = "apiKey"
	KeyFontSize            = "fontSize"
	KeyTranslationLanguage = "translationLanguage"
)

// ResultKey derives the persisted key for an enrichment result. Language is
// only non-empty for translation.
func ResultKey(documentId, operation, language string) string {
	key := documentId + "-" + operation
	if language != "" {
		key += "-" + language
	}
	return key
}

const DefaultFlushDebounce = 100 * time.Millisecond

// PersistentStore coalesces bursts of writes to the same key into one
// physical write per debounce window. Reads see pending values before they
// are flushed (read-your-writes). Removals are immediate so a deletion is
// never shadowed by a stale pending write.
type PersistentStore struct {
	backend  contract.BackingStore
	log      logger.ILogger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]string
	timer   *time.Timer
}

func NewPersistentStore(backend contract.BackingStore, log logger.ILogger, debounce time.Duration) *PersistentStore {
	if debounce <= 0 {
		debounce = DefaultFlushDebounce
	}
	return &PersistentStore{
		backend:  backend,
		log:      log,
		debounce: debounce,
		pending:  make(map[string]string),
	}
}

// Write queues value under key and (re)starts the debounce timer. The
// physical write happens on timer expiry; errors there are logged, not
// returned — the pending map is cleared regardless so a failed flush cannot
// wedge future flushes.
func (s *PersistentStore) Write(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[key] = value

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.Flush(context.Background()); err != nil {
			s.log.Error("store", "debounced flush failed", map[string]interface{}{"error": err.Error()})
		}
	})
}

// Read returns the pending value for key if present, else the durable value,
// else def.
func (s *PersistentStore) Read(ctx context.Context, key, def string) (string, error) {
	s.mu.Lock()
	if v, ok := s.pending[key]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	v, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return def, nil
	}
	return v, nil
}

// Remove deletes key from both the pending map and durable storage
// immediately (not debounced).
func (s *PersistentStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()

	return s.backend.Delete(ctx, key)
}

// Flush writes every queued entry to durable storage. The pending map is
// cleared up front; the first backend error is returned but remaining
// entries are still attempted.
func (s *PersistentStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	batch := s.pending
	s.pending = make(map[string]string)
	s.mu.Unlock()

	var firstErr error
	for key, value := range batch {
		if err := s.backend.Set(ctx, key, value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close stops the debounce timer and flushes whatever is still queued.
func (s *PersistentStore) Close(ctx context.Context) error {
	return s.Flush(ctx)
}
