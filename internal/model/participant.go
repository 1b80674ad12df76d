package model

// Participant is one person splitting a receipt.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
