package dto

// Segment mirrors domain.TranscriptEntry on the wire.
type Segment struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ExportRequest struct {
	Title    string    `json:"title"`
	Segments []Segment `json:"segments"`
}

type EmailRequest struct {
	Email    string    `json:"email"`
	Title    string    `json:"title"`
	Segments []Segment `json:"segments"`
}
