package domain

// TranscriptEntry is one speaker turn, ready for display.
type TranscriptEntry struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// TranscriptResult is the unit returned to the browser: the full text plus
// the ordered diarized entries. Entry order follows the upstream
// chronological order.
type TranscriptResult struct {
	Text    string
	Entries []TranscriptEntry
}

// RawSegment is a diarized turn exactly as the upstream API reported it,
// before speaker labels are normalized.
type RawSegment struct {
	Speaker   string
	Text      string
	Start     float64
	End       float64
	HasTiming bool
}

// RawTranscript bundles the upstream response.
type RawTranscript struct {
	Text     string
	Duration float64
	Segments []RawSegment
}

const MaxUploadSize = 100 << 20

// AllowedExtensions are the audio formats the upstream API accepts.
var AllowedExtensions = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".m4a":  true,
	".wav":  true,
	".webm": true,
}
