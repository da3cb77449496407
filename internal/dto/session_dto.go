package dto

type DocumentResponse struct {
	Id    string `json:"id"`
	Title string `json:"title"`
}

type SessionStateResponse struct {
	Documents     []DocumentResponse `json:"documents"`
	ActiveIndex   int                `json:"active_index"`
	ActiveContent string             `json:"active_content"`
}

type CreateDocumentResponse struct {
	Id    string `json:"id"`
	Title string `json:"title"`
}

type SwitchDocumentRequest struct {
	Index *int `json:"index" validate:"required,gte=0"`
}

type RenameDocumentRequest struct {
	Index int
	Title string `json:"title"`
}

type ContentChangedRequest struct {
	Content string `json:"content"`
}

type HistoryStepResponse struct {
	Applied bool   `json:"applied"`
	Content string `json:"content"`
}
