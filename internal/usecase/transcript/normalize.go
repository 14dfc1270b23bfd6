package transcript

import (
	"fmt"
	"strings"

	"audio-transcriber/internal/domain"
)

// Normalize maps a raw upstream transcript into display entries. Speaker
// identifiers are rewritten to "Speaker 1".."Speaker N" in order of first
// appearance; entry order is preserved. A segment without a speaker label
// makes the whole response untrustworthy and is reported as upstream
// malformation rather than guessed around.
func Normalize(raw *domain.RawTranscript) (*domain.TranscriptResult, error) {
	if raw == nil || len(raw.Segments) == 0 {
		return nil, fmt.Errorf("%w: no diarized segments", ErrMalformedResponse)
	}

	labels := make(map[string]string, 4)
	entries := make([]domain.TranscriptEntry, 0, len(raw.Segments))

	for i, seg := range raw.Segments {
		speaker := strings.TrimSpace(seg.Speaker)
		if speaker == "" {
			return nil, fmt.Errorf("%w: segment %d missing speaker label", ErrMalformedResponse, i)
		}

		label, ok := labels[speaker]
		if !ok {
			label = fmt.Sprintf("Speaker %d", len(labels)+1)
			labels[speaker] = label
		}

		entry := domain.TranscriptEntry{
			Speaker: label,
			Text:    strings.TrimSpace(seg.Text),
		}
		if seg.HasTiming {
			entry.Timestamp = formatTimestamp(seg.Start)
		}
		entries = append(entries, entry)
	}

	return &domain.TranscriptResult{
		Text:    raw.Text,
		Entries: entries,
	}, nil
}

func formatTimestamp(sec float64) string {
	total := int(sec)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
