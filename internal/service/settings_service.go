package service

import (
	"context"

	"note-editor-be/internal/store"
)

type Settings struct {
	APIKeyConfigured    bool   `json:"api_key_configured"`
	FontSize            string `json:"font_size"`
	TranslationLanguage string `json:"translation_language"`
}

type ISettingsService interface {
	Get(ctx context.Context) (*Settings, error)
	SetAPIKey(ctx context.Context, apiKey string) error
	SetFontSize(ctx context.Context, fontSize string) error
	SetTranslationLanguage(ctx context.Context, language string) error
}

// settingsService persists editor preferences under their fixed store keys.
// The credential itself is never echoed back, only whether one is set.
type settingsService struct {
	store *store.PersistentStore
}

func NewSettingsService(st *store.PersistentStore) ISettingsService {
	return &settingsService{store: st}
}

func (s *settingsService) Get(ctx context.Context) (*Settings, error) {
	apiKey, err := s.store.Read(ctx, store.KeyAPIKey, "")
	if err != nil {
		return nil, err
	}
	fontSize, err := s.store.Read(ctx, store.KeyFontSize, "16")
	if err != nil {
		return nil, err
	}
	language, err := s.store.Read(ctx, store.KeyTranslationLanguage, "en")
	if err != nil {
		return nil, err
	}

	return &Settings{
		APIKeyConfigured:    apiKey != "",
		FontSize:            fontSize,
		TranslationLanguage: language,
	}, nil
}

func (s *settingsService) SetAPIKey(ctx context.Context, apiKey string) error {
	s.store.Write(store.KeyAPIKey, apiKey)
	return nil
}

func (s *settingsService) SetFontSize(ctx context.Context, fontSize string) error {
	s.store.Write(store.KeyFontSize, fontSize)
	return nil
}

func (s *settingsService) SetTranslationLanguage(ctx context.Context, language string) error {
	s.store.Write(store.KeyTranslationLanguage, language)
	return nil
}
