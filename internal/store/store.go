package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"workflow/internal/logger"
	apperrors "workflow/pkg/errors"
	"workflow/pkg/metrics"
	"workflow/pkg/models"
)

// Backend is an append-only multi-value store keyed by user id. Values are
// returned in append order. Appends for the same user must not overwrite
// each other.
type Backend interface {
	Append(ctx context.Context, userID string, value []byte) error
	Values(ctx context.Context, userID string) ([][]byte, error)
	Name() string
}

// Store serialises notifications onto a Backend.
type Store struct {
	backend Backend
	logger  logger.Logger
}

func New(backend Backend, log logger.Logger) *Store {
	if log == nil {
		log = logger.NopLogger()
	}
	return &Store{backend: backend, logger: log}
}

func (s *Store) Backend() string {
	return s.backend.Name()
}

// Record appends n under recipientID.
func (s *Store) Record(ctx context.Context, recipientID string, n models.Notification) error {
	if recipientID == "" {
		return apperrors.ErrStorage.WithDetail("message", "recipient id is required")
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return apperrors.ErrStorage.WithCause(fmt.Errorf("encode notification: %w", err))
	}

	start := time.Now()
	err = s.backend.Append(ctx, recipientID, raw)
	metrics.ObserveStoreOperation(s.backend.Name(), "append", status(err), time.Since(start))
	if err != nil {
		return apperrors.ErrStorage.WithDetail("user_id", recipientID).WithCause(err)
	}
	return nil
}

// List returns every stored notification for recipientID, oldest append
// first. Entries that no longer decode are skipped.
func (s *Store) List(ctx context.Context, recipientID string) ([]models.Notification, error) {
	out := []models.Notification{}
	err := s.decodeEach(ctx, recipientID, func(raw []byte) error {
		var n models.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	return out, err
}

// Records is List without the typed decode: every field of each stored
// record is kept, including ones models.Notification does not know about.
func (s *Store) Records(ctx context.Context, recipientID string) ([]map[string]interface{}, error) {
	out := []map[string]interface{}{}
	err := s.decodeEach(ctx, recipientID, func(raw []byte) error {
		var record map[string]interface{}
		if err := json.Unmarshal(raw, &record); err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("record is not an object")
		}
		out = append(out, record)
		return nil
	})
	return out, err
}

func (s *Store) decodeEach(ctx context.Context, recipientID string, decode func(raw []byte) error) error {
	if recipientID == "" {
		return nil
	}

	start := time.Now()
	values, err := s.backend.Values(ctx, recipientID)
	metrics.ObserveStoreOperation(s.backend.Name(), "list", status(err), time.Since(start))
	if err != nil {
		return apperrors.ErrStorage.WithDetail("user_id", recipientID).WithCause(err)
	}

	for i, raw := range values {
		if err := decode(raw); err != nil {
			s.logger.WarnwCtx(ctx, "Skipping undecodable notification",
				"user_id", recipientID,
				"index", i,
				"error", err,
			)
		}
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
