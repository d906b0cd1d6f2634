package services

import (
	"context"
	"fmt"

	"chatspace/internal/apperr"
	"chatspace/internal/models"
)

// summaryWindow is how many trailing messages are handed to the summarizer.
const summaryWindow = 20

// minSummaryMessages is the floor below which a summary request is rejected
// without ever calling the external service.
const minSummaryMessages = 3

// Summarizer is the external text-to-text collaborator. Input is an ordered
// list of "speaker: text" lines; output is a short prose summary.
type Summarizer interface {
	Summarize(ctx context.Context, messages []string) (string, error)
}

// SummaryService turns a summarizer result into a synthetic ledger entry.
type SummaryService struct {
	messages   *MessageService
	summarizer Summarizer
}

func NewSummaryService(messages *MessageService, summarizer Summarizer) *SummaryService {
	return &SummaryService{messages: messages, summarizer: summarizer}
}

// Summarize loads the room's recent history, requests a summary and appends
// the result as a synthetic message. There is no retry: a collaborator
// failure is reported and nothing is appended.
func (s *SummaryService) Summarize(ctx context.Context, requester Identity, roomID string) (*models.Message, error) {
	history, err := s.messages.History(ctx, requester, roomID)
	if err != nil {
		return nil, err
	}
	if len(history) < minSummaryMessages {
		return nil, apperr.ErrInsufficientContext
	}
	if len(history) > summaryWindow {
		history = history[len(history)-summaryWindow:]
	}

	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", m.AuthorName, m.Text))
	}

	summary, err := s.summarizer.Summarize(ctx, lines)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnavailable, "could not generate a summary", err)
	}

	return s.messages.AppendSynthetic(ctx, roomID, summary)
}
