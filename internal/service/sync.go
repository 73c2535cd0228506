package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"longevity/internal/store"
)

// MetricsUploader sends samples to the remote gateway; *gateway.Client
// implements it
type MetricsUploader interface {
	RecordMetrics(ctx context.Context, sample store.MetricSample) error
}

// SyncService uploads locally recorded metric samples to the gateway
type SyncService struct {
	client MetricsUploader
	store  *store.DB
	log    zerolog.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(client MetricsUploader, db *store.DB, log zerolog.Logger) *SyncService {
	return &SyncService{
		client: client,
		store:  db,
		log:    log.With().Str("component", "sync").Logger(),
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Total     int
	Completed int
	Current   string // date of the sample being sent
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	SamplesUploaded int
	Cursor          string
	Errors          []error
}

// SyncMetrics uploads every sample dated on or after the stored cursor.
// The cursor day itself is resent since samples for it may have been
// updated. Failed samples are reported in the result and keep the cursor
// from advancing past them.
func (s *SyncService) SyncMetrics(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	cursor, _, err := s.store.Get(MetricsSyncCursorKey)
	if err != nil {
		return nil, fmt.Errorf("reading sync cursor: %w", err)
	}

	samples, err := s.store.ListSamples(cursor, "")
	if err != nil {
		return nil, fmt.Errorf("listing samples: %w", err)
	}

	result := &SyncResult{Cursor: cursor}
	failedFrom := ""

	for i, sample := range samples {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if progress != nil {
			progress <- SyncProgress{Total: len(samples), Completed: i, Current: sample.Date}
		}

		if err := s.client.RecordMetrics(ctx, sample); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("sample %s/%s: %w", sample.Date, sample.Source, err))
			if failedFrom == "" {
				failedFrom = sample.Date
			}
			continue
		}
		result.SamplesUploaded++

		if failedFrom == "" && sample.Date > result.Cursor {
			result.Cursor = sample.Date
		}
	}

	if result.Cursor != cursor {
		if err := s.store.Set(MetricsSyncCursorKey, result.Cursor); err != nil {
			return result, fmt.Errorf("saving sync cursor: %w", err)
		}
	}

	s.log.Info().
		Int("uploaded", result.SamplesUploaded).
		Int("failed", len(result.Errors)).
		Str("cursor", result.Cursor).
		Msg("Metric sync finished")

	return result, nil
}

// Cursor returns the date of the last uploaded sample day, empty before the
// first sync
func (s *SyncService) Cursor() (string, error) {
	cursor, _, err := s.store.Get(MetricsSyncCursorKey)
	if err != nil {
		return "", fmt.Errorf("reading sync cursor: %w", err)
	}
	return cursor, nil
}
