package entity

// Document is one note buffer ("tab"). Content is NOT stored inline; it lives
// in the persistent store under the document's id so the metadata list stays
// small and is always persisted as a unit.
type Document struct {
	Id    string `json:"id"`
	Title string `json:"title"`
}

// SessionState is the ordered document list plus the active selection.
// ActiveIndex is -1 only transiently during initialization.
type SessionState struct {
	Documents   []Document `json:"documents"`
	ActiveIndex int        `json:"active_index"`
}
