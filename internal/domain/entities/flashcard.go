package entities

// Flashcard is a single study card from the static flashcard bank.
type Flashcard struct {
	ID         string   `json:"id" validate:"required"`
	DomainID   DomainID `json:"domainId"`
	TaskID     string   `json:"taskId,omitempty"`
	Type       string   `json:"type,omitempty"`
	Front      string   `json:"front" validate:"required"`
	Back       string   `json:"back" validate:"required"`
	Tags       []string `json:"tags,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}
