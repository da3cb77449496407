package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"note-editor-be/internal/entity"
	"note-editor-be/internal/history"
	"note-editor-be/internal/pkg/logger"
	"note-editor-be/internal/store"
	"note-editor-be/pkg/enrichment"
	"note-editor-be/pkg/events"

	"github.com/google/uuid"
)

var (
	ErrLastDocument    = errors.New("cannot close the last remaining document")
	ErrIndexOutOfRange = errors.New("document index out of range")
	ErrNoActiveDoc     = errors.New("no active document")
)

// ActiveDocumentListener is notified when the active document changes or a
// document is about to be removed, so per-document enrichment state follows
// the selection.
type ActiveDocumentListener interface {
	SetActiveDocument(ctx context.Context, documentId string)
	ClearPanelFor(documentId string)
}

type ISessionService interface {
	Init(ctx context.Context) error
	State(ctx context.Context) (entity.SessionState, string, error)
	CreateDocument(ctx context.Context) (*entity.Document, error)
	SwitchTo(ctx context.Context, index int) error
	CloseDocument(ctx context.Context, index int) error
	RenameDocument(ctx context.Context, index int, title string) error
	ContentChanged(ctx context.Context, text string) error
	Undo(ctx context.Context) (string, bool, error)
	Redo(ctx context.Context) (string, bool, error)
}

type sessionService struct {
	store     *store.PersistentStore
	listener  ActiveDocumentListener
	publisher IPublisherService
	log       logger.ILogger

	mu        sync.Mutex
	documents []entity.Document
	active    int
	histories map[string]*history.Manager
}

func NewSessionService(
	st *store.PersistentStore,
	listener ActiveDocumentListener,
	publisher IPublisherService,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		store:     st,
		listener:  listener,
		publisher: publisher,
		log:       log,
		active:    -1,
		histories: make(map[string]*history.Manager),
	}
}

// Init restores a previously persisted session, or creates a single fresh
// document when none exists. The restored active index is validated; an
// out-of-range value falls back to the first document.
func (s *sessionService) Init(ctx context.Context) error {
	s.mu.Lock()

	raw, err := s.store.Read(ctx, store.KeyTabs, "")
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if raw != "" {
		var docs []entity.Document
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("unmarshal session documents: %w", err)
		}
		s.documents = docs
	}

	if len(s.documents) == 0 {
		doc := entity.Document{
			Id:    uuid.NewString(),
			Title: "Note 1",
		}
		s.documents = []entity.Document{doc}
		s.histories[doc.Id] = history.NewManager("")
		s.active = 0
		s.persistSessionLocked()
		activeId := doc.Id
		s.mu.Unlock()
		s.listener.SetActiveDocument(ctx, activeId)
		return nil
	}

	// Seed each document's history from its persisted content.
	for _, doc := range s.documents {
		content, err := s.store.Read(ctx, doc.Id, "")
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.histories[doc.Id] = history.NewManager(content)
	}

	idxRaw, err := s.store.Read(ctx, store.KeyCurrentTabIndex, "0")
	if err != nil {
		s.mu.Unlock()
		return err
	}
	idx, convErr := strconv.Atoi(idxRaw)
	if convErr != nil || idx < 0 || idx >= len(s.documents) {
		idx = 0
	}
	s.active = idx
	activeId := s.documents[s.active].Id
	s.mu.Unlock()

	s.listener.SetActiveDocument(ctx, activeId)
	return nil
}

func (s *sessionService) State(ctx context.Context) (entity.SessionState, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := entity.SessionState{
		Documents:   append([]entity.Document(nil), s.documents...),
		ActiveIndex: s.active,
	}
	if s.active < 0 || s.active >= len(s.documents) {
		return state, "", nil
	}
	return state, s.histories[s.documents[s.active].Id].Current(), nil
}

func (s *sessionService) CreateDocument(ctx context.Context) (*entity.Document, error) {
	s.mu.Lock()

	// Flush the outgoing document's content before the selection moves.
	if s.active >= 0 && s.active < len(s.documents) {
		outgoing := s.documents[s.active]
		s.store.Write(outgoing.Id, s.histories[outgoing.Id].Current())
	}

	doc := entity.Document{
		Id:    uuid.NewString(),
		Title: fmt.Sprintf("Note %d", len(s.documents)+1),
	}
	s.documents = append(s.documents, doc)
	s.histories[doc.Id] = history.NewManager("")
	s.active = len(s.documents) - 1
	s.persistSessionLocked()
	s.mu.Unlock()

	s.listener.SetActiveDocument(ctx, doc.Id)
	s.publishEvent(ctx, events.TypeDocumentCreated, map[string]interface{}{
		"document_id": doc.Id,
		"title":       doc.Title,
	})

	return &doc, nil
}

func (s *sessionService) SwitchTo(ctx context.Context, index int) error {
	s.mu.Lock()

	if index < 0 || index >= len(s.documents) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	if index == s.active {
		// Idempotent: no content reload, no history mutation.
		s.mu.Unlock()
		return nil
	}

	activeId, err := s.applySwitchLocked(ctx, index)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.listener.SetActiveDocument(ctx, activeId)
	return nil
}

// applySwitchLocked persists the outgoing document, moves the selection and
// loads the incoming document's content. The in-memory history's current
// value wins over a fresh store read so an in-progress undo/redo lineage
// survives tab switches. Returns the incoming document id; the caller
// notifies the listener after releasing the lock.
func (s *sessionService) applySwitchLocked(ctx context.Context, index int) (string, error) {
	if s.active >= 0 && s.active < len(s.documents) {
		outgoing := s.documents[s.active]
		// The history manager already holds this text as its current
		// snapshot; re-pushing it would clear the redo lineage.
		s.store.Write(outgoing.Id, s.histories[outgoing.Id].Current())
	}

	s.active = index
	incoming := s.documents[index]

	if _, ok := s.histories[incoming.Id]; !ok {
		content, err := s.store.Read(ctx, incoming.Id, "")
		if err != nil {
			return "", err
		}
		s.histories[incoming.Id] = history.NewManager(content)
	}

	s.persistSessionLocked()
	return incoming.Id, nil
}

func (s *sessionService) CloseDocument(ctx context.Context, index int) error {
	s.mu.Lock()

	if index < 0 || index >= len(s.documents) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	if len(s.documents) == 1 {
		s.mu.Unlock()
		return ErrLastDocument
	}

	closed := s.documents[index]
	wasActive := index == s.active

	if wasActive {
		s.store.Write(closed.Id, s.histories[closed.Id].Current())
	}

	s.documents = append(s.documents[:index], s.documents[index+1:]...)
	delete(s.histories, closed.Id)

	// Cascade: content key plus every enrichment-result key. An orphaned
	// result for a deleted document must never resurface.
	if err := s.store.Remove(ctx, closed.Id); err != nil {
		s.mu.Unlock()
		return err
	}
	lang, _ := s.store.Read(ctx, store.KeyTranslationLanguage, "")
	for _, op := range enrichment.Operations() {
		if err := s.store.Remove(ctx, store.ResultKey(closed.Id, string(op), "")); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	if lang != "" {
		if err := s.store.Remove(ctx, store.ResultKey(closed.Id, string(enrichment.OpTranslate), lang)); err != nil {
			s.mu.Unlock()
			return err
		}
	}

	// Resolve the new active index.
	newActive := s.active
	switch {
	case wasActive:
		newActive = index
		if newActive >= len(s.documents) {
			newActive = len(s.documents) - 1
		}
	case index < s.active:
		newActive = s.active - 1
	}

	// Force a full reload even when the index is numerically unchanged: the
	// document identity behind it changed.
	s.active = -1
	activeId, err := s.applySwitchLocked(ctx, newActive)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if wasActive {
		s.listener.ClearPanelFor(closed.Id)
	}
	s.listener.SetActiveDocument(ctx, activeId)
	s.publishEvent(ctx, events.TypeDocumentClosed, map[string]interface{}{
		"document_id": closed.Id,
		"title":       closed.Title,
	})

	return nil
}

func (s *sessionService) RenameDocument(ctx context.Context, index int, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.documents) {
		return ErrIndexOutOfRange
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	s.documents[index].Title = title
	s.persistDocumentsLocked()
	return nil
}

func (s *sessionService) ContentChanged(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active < 0 || s.active >= len(s.documents) {
		return ErrNoActiveDoc
	}

	doc := s.documents[s.active]
	s.histories[doc.Id].PushState(text)
	s.store.Write(doc.Id, text)
	return nil
}

func (s *sessionService) Undo(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active < 0 || s.active >= len(s.documents) {
		return "", false, ErrNoActiveDoc
	}

	doc := s.documents[s.active]
	text, ok := s.histories[doc.Id].Undo()
	if !ok {
		return "", false, nil
	}
	s.store.Write(doc.Id, text)
	return text, true, nil
}

func (s *sessionService) Redo(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active < 0 || s.active >= len(s.documents) {
		return "", false, ErrNoActiveDoc
	}

	doc := s.documents[s.active]
	text, ok := s.histories[doc.Id].Redo()
	if !ok {
		return "", false, nil
	}
	s.store.Write(doc.Id, text)
	return text, true, nil
}

func (s *sessionService) persistDocumentsLocked() {
	data, err := json.Marshal(s.documents)
	if err != nil {
		s.log.Error("session", "marshal documents", map[string]interface{}{"error": err.Error()})
		return
	}
	s.store.Write(store.KeyTabs, string(data))
}

func (s *sessionService) persistSessionLocked() {
	s.persistDocumentsLocked()
	s.store.Write(store.KeyCurrentTabIndex, strconv.Itoa(s.active))
}

// publishEvent is auxiliary: a publish failure is logged, never surfaced.
func (s *sessionService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("session", "failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
