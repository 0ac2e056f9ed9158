package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

type State string

const (
	StatePending    State = "pending"
	StateUploading  State = "uploading"
	StateCommitting State = "committing"
	StateSynced     State = "synced"
	StateFailed     State = "failed"
)

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonQuotaExceeded   Reason = "quota_exceeded"
	ReasonTransient       Reason = "transient"
	ReasonInvalidIdentity Reason = "invalid_identity"
)

// MutationResult reports where a local mutation ended up.
type MutationResult struct {
	LocalID int64
	AppID   int32
	State   State
	Reason  Reason
}

// SyncClient applies document mutations to the local store first and then
// pushes them to the backend. A push that fails for any reason other than
// quota leaves the record pending for the next sweep.
type SyncClient struct {
	docs         documents.Repository
	gateway      client.Gateway
	userID       string
	log          logging.Logger
	onTransition func(MutationResult)
}

type SyncOption func(*SyncClient)

// WithTransitionHook registers fn to observe every state change.
func WithTransitionHook(fn func(MutationResult)) SyncOption {
	return func(s *SyncClient) { s.onTransition = fn }
}

func NewSyncClient(docs documents.Repository, gateway client.Gateway, userID string, log logging.Logger, opts ...SyncOption) *SyncClient {
	if log == nil {
		log = logging.Nop()
	}
	s := &SyncClient{docs: docs, gateway: gateway, userID: userID, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *SyncClient) Create(ctx context.Context, rec models.DocumentRecord) (MutationResult, error) {
	rec.LocalID = 0
	rec.Synced = false

	id, err := s.docs.Insert(ctx, rec)
	if err != nil {
		return MutationResult{}, fmt.Errorf("create document: %w", err)
	}
	return s.pushByID(ctx, id)
}

func (s *SyncClient) Update(ctx context.Context, localID int64, patch models.DocumentPatch) (MutationResult, error) {
	if err := s.docs.Update(ctx, localID, patch); err != nil {
		return MutationResult{}, fmt.Errorf("update document %d: %w", localID, err)
	}
	return s.pushByID(ctx, localID)
}

// ToggleFavorite flips the flag in the store and pushes the record.
func (s *SyncClient) ToggleFavorite(ctx context.Context, localID int64) (MutationResult, error) {
	if err := s.docs.ToggleFavorite(ctx, localID); err != nil {
		return MutationResult{}, fmt.Errorf("toggle favorite %d: %w", localID, err)
	}
	return s.pushByID(ctx, localID)
}

// Delete removes the record locally. The remote delete is best effort: its
// failure is logged and never returned.
func (s *SyncClient) Delete(ctx context.Context, localID int64) (MutationResult, error) {
	rec, err := s.docs.Get(ctx, localID)
	if err != nil {
		return MutationResult{}, fmt.Errorf("get document %d: %w", localID, err)
	}
	if err := s.docs.Delete(ctx, localID); err != nil {
		return MutationResult{}, fmt.Errorf("delete document %d: %w", localID, err)
	}

	res := MutationResult{LocalID: localID, AppID: rec.AppID, State: StatePending}
	if !identity.IsValidUserID(s.userID) {
		return res, nil
	}

	key, err := rec.JoinKey()
	if err != nil {
		s.log.Warn(ctx, "remote delete skipped", "local_id", localID, "error", err)
		res.State, res.Reason = StateFailed, ReasonInvalidIdentity
		return res, nil
	}
	res.AppID = key

	if err := s.gateway.Remove(ctx, key, s.userID); err != nil {
		s.log.Warn(ctx, "remote delete failed", "local_id", localID, "app_id", key, "error", err)
		res.State, res.Reason = StateFailed, ReasonTransient
		return res, nil
	}
	res.State = StateSynced
	return res, nil
}

// SweepPending pushes every record that is not synced yet, oldest first.
// It returns the first quota error after trying every record.
func (s *SyncClient) SweepPending(ctx context.Context) ([]MutationResult, error) {
	pending, err := s.docs.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	results := make([]MutationResult, 0, len(pending))
	var quotaErr error
	for _, rec := range pending {
		res, err := s.push(ctx, rec)
		results = append(results, res)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrQuotaExceeded) {
			return results, err
		}
		if quotaErr == nil {
			quotaErr = err
		}
	}
	return results, quotaErr
}

func (s *SyncClient) pushByID(ctx context.Context, localID int64) (MutationResult, error) {
	rec, err := s.docs.Get(ctx, localID)
	if err != nil {
		return MutationResult{}, fmt.Errorf("get document %d: %w", localID, err)
	}
	return s.push(ctx, rec)
}

// push sends the snapshot rec. Only quota rejections and local store
// failures are returned as errors.
func (s *SyncClient) push(ctx context.Context, rec models.DocumentRecord) (MutationResult, error) {
	res := MutationResult{LocalID: rec.LocalID, AppID: rec.AppID, State: StatePending}
	s.emit(res)

	if !identity.IsValidUserID(s.userID) {
		return res, nil
	}

	if _, err := rec.JoinKey(); err != nil {
		s.log.Warn(ctx, "document has no usable identity, not syncing", "local_id", rec.LocalID)
		return s.fail(res, ReasonInvalidIdentity), nil
	}

	var opts []client.UpsertOption
	if rec.HasLocalMedia() {
		res.State = StateUploading
		s.emit(res)
		opts = append(opts, client.WithBeforeCommit(func() {
			res.State = StateCommitting
			s.emit(res)
		}))
	} else {
		res.State = StateCommitting
		s.emit(res)
	}

	up, err := s.gateway.Upsert(ctx, rec, s.userID, opts...)
	switch {
	case errors.Is(err, common.ErrQuotaExceeded):
		s.log.Warn(ctx, "sync rejected: quota exceeded", "local_id", rec.LocalID)
		return s.fail(res, ReasonQuotaExceeded), fmt.Errorf("sync document %d: %w", rec.LocalID, err)
	case errors.Is(err, common.ErrInvalidIdentity):
		return s.fail(res, ReasonInvalidIdentity), nil
	case err != nil:
		s.log.Warn(ctx, "sync failed, will retry", "local_id", rec.LocalID, "error", err)
		return s.fail(res, ReasonTransient), nil
	}

	if up.Skipped {
		res.State = StatePending
		s.emit(res)
		return res, nil
	}

	mark := documents.SyncMark{
		AppID:         up.AppID,
		SeenUpdatedAt: rec.UpdatedAt,
		FrontMediaRef: up.FrontMediaRef,
		BackMediaRef:  up.BackMediaRef,
		Complete:      up.MediaComplete,
	}
	if err := s.docs.MarkSynced(ctx, rec.LocalID, mark); err != nil {
		return res, fmt.Errorf("mark document %d synced: %w", rec.LocalID, err)
	}

	res.AppID = up.AppID
	if up.MediaComplete {
		res.State, res.Reason = StateSynced, ReasonNone
	} else {
		res.State, res.Reason = StatePending, ReasonTransient
	}
	s.emit(res)

	s.log.Debug(ctx, "document pushed", "local_id", rec.LocalID, "app_id", up.AppID, "minimal", up.Minimal)
	return res, nil
}

func (s *SyncClient) fail(res MutationResult, reason Reason) MutationResult {
	res.State, res.Reason = StateFailed, reason
	s.emit(res)
	return res
}

func (s *SyncClient) emit(res MutationResult) {
	if s.onTransition != nil {
		s.onTransition(res)
	}
}
