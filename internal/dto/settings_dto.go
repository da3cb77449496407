package dto

type SettingsResponse struct {
	APIKeyConfigured    bool   `json:"api_key_configured"`
	FontSize            string `json:"font_size"`
	TranslationLanguage string `json:"translation_language"`
}

// Nil fields are left unchanged.
type UpdateSettingsRequest struct {
	APIKey              *string `json:"api_key"`
	FontSize            *string `json:"font_size"`
	TranslationLanguage *string `json:"translation_language"`
}
