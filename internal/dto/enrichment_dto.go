package dto

type SwitchOperationRequest struct {
	Operation string `json:"operation" validate:"required"`
}

type PanelResponse struct {
	DocumentId string `json:"document_id"`
	Operation  string `json:"operation"`
	Status     string `json:"status"`
	Content    string `json:"content"`
	Message    string `json:"message,omitempty"`
}
