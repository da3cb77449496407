package entity

type PanelStatus string

const (
	PanelIdle    PanelStatus = "IDLE"
	PanelWorking PanelStatus = "WORKING"
	PanelDone    PanelStatus = "DONE"
	PanelError   PanelStatus = "ERROR"
)

// Panel is the single enrichment result surface. The UI collaborator reads it
// after invoking a run; errors land here and never touch session state.
type Panel struct {
	DocumentId string      `json:"document_id"`
	Operation  string      `json:"operation"`
	Status     PanelStatus `json:"status"`
	Content    string      `json:"content"`
	Message    string      `json:"message,omitempty"`
}
