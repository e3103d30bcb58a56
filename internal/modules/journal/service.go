package journal

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pragmas/internal/domain"
	"github.com/aristath/pragmas/internal/events"
	"github.com/aristath/pragmas/internal/utils"
)

// JournalService implements the caller-facing journal operations
type JournalService struct {
	entries   *JournalRepository
	publisher events.Publisher
	log       zerolog.Logger
}

// NewJournalService creates a new journal service
func NewJournalService(entries *JournalRepository, publisher events.Publisher, log zerolog.Logger) *JournalService {
	return &JournalService{
		entries:   entries,
		publisher: publisher,
		log:       log.With().Str("service", "journal").Logger(),
	}
}

// List returns the caller's most recent entries
func (s *JournalService) List(ctx context.Context, caller *domain.Caller) ([]EntryView, error) {
	if caller == nil {
		return nil, domain.NewUnauthorizedError("Unauthorized")
	}
	views, err := s.entries.ListByUser(ctx, caller.ID, ListLimit)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to list journal entries", err)
	}
	return views, nil
}

// Update replaces the thesis and tags of an entry the caller owns.
// The thesis is sanitized (empty becomes null) and tags are normalized.
// Entries of other users are NotFound and left untouched.
func (s *JournalService) Update(ctx context.Context, caller *domain.Caller, req UpdateRequest) (*Entry, error) {
	if caller == nil {
		return nil, domain.NewUnauthorizedError("Unauthorized")
	}

	var v domain.Violations
	v.Check(req.JournalID != "", "journal_id", "is required")
	for _, tag := range req.Tags {
		if tag == "" {
			v.Add("tags", "must not contain empty tags")
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var thesis *string
	if req.Thesis != nil {
		if clean := utils.SanitizeText(*req.Thesis); clean != "" {
			thesis = &clean
		}
	}
	tags := utils.NormalizeTags(req.Tags)

	entry, err := s.entries.GetOwned(ctx, req.JournalID, caller.ID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, err
		}
		return nil, domain.NewPersistenceError("failed to load journal entry", err)
	}

	now := time.Now().UTC()
	if err := s.entries.Update(ctx, entry.ID, thesis, tags, now); err != nil {
		return nil, domain.NewPersistenceError("failed to update journal entry", err)
	}
	entry.Thesis = thesis
	entry.Tags = tags
	entry.UpdatedAt = now

	if s.publisher != nil {
		s.publisher.Publish(caller.ID, &events.JournalUpdatedData{
			JournalEntryID: entry.ID,
			Tags:           tags,
			HasThesis:      thesis != nil,
		})
	}

	s.log.Info().Str("journal_id", entry.ID).Int("tags", len(tags)).Msg("Journal entry updated")
	return entry, nil
}
