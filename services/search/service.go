package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/fuzzyfind/logger"
	"github.com/meghashyamc/fuzzyfind/services/variants"
)

const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"

	maxSearchTime = 30 * time.Minute
)

type Request struct {
	Root           string  `json:"root"`
	Keyword        string  `json:"keyword"`
	SearchContents bool    `json:"search_contents"`
	Threshold      float64 `json:"threshold"`
	MaxResults     int     `json:"max_results"`
	SortEntries    bool    `json:"sort_entries"`
}

// Result is everything a report needs: the keyword, its variants and the finished session.
type Result struct {
	Keyword   string   `json:"keyword"`
	Threshold float64  `json:"threshold"`
	Variants  []string `json:"variants"`
	Session   *Session `json:"session"`
}

type RequestStatus struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Result      *Result   `json:"result,omitempty"`
}

type Service struct {
	logger       logger.Logger
	vocabulary   *variants.Vocabulary
	expander     *variants.Expander
	searcher     *Searcher
	requestStore RequestStore
	runC         chan runRequest
	stopped      chan struct{}
	busy         atomic.Bool
}

type runRequest struct {
	id      string
	request Request
}

// New builds a search service around a loaded vocabulary. When requestStore is not nil a
// background worker is started that runs submitted searches one at a time until ctx is done.
func New(ctx context.Context, logger logger.Logger, vocabulary *variants.Vocabulary, expandWorkers int, requestStore RequestStore) *Service {
	service := &Service{
		logger:       logger,
		vocabulary:   vocabulary,
		expander:     variants.NewExpander(logger, expandWorkers),
		searcher:     NewSearcher(logger),
		requestStore: requestStore,
		runC:         make(chan runRequest),
		stopped:      make(chan struct{}),
	}

	if requestStore != nil {
		service.clearPreviousRequests()
		go service.run(ctx)
	}

	return service
}

// Expand returns the variants of keyword without touching the file system.
func (s *Service) Expand(ctx context.Context, keyword string, threshold float64) (*variants.Expansion, error) {
	return s.expander.Expand(ctx, keyword, s.vocabulary, threshold)
}

// Run validates the root, expands the keyword and walks the tree. Capped and complete walks
// both succeed.
func (s *Service) Run(ctx context.Context, request Request) (*Result, error) {
	if request.MaxResults < 1 {
		return nil, ErrInvalidResultCap
	}
	if err := CheckRoot(request.Root); err != nil {
		s.logger.Warn("refusing to search invalid root", "root", request.Root, "err", err.Error())
		return nil, err
	}

	expansion, err := s.Expand(ctx, request.Keyword, request.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to expand keyword: %w", err)
	}

	session, err := s.searcher.Walk(ctx, request.Root, expansion.Pattern, Options{
		SearchContents: request.SearchContents,
		MaxResults:     request.MaxResults,
		SortEntries:    request.SortEntries,
	})
	if session == nil {
		return nil, err
	}

	result := &Result{
		Keyword:   expansion.Keyword,
		Threshold: expansion.Threshold,
		Variants:  expansion.Variants,
		Session:   session,
	}

	return result, err
}

// Submit queues a search for the background worker and returns its request ID.
func (s *Service) Submit(request Request) (string, error) {
	if s.requestStore == nil {
		return "", ErrAsyncUnavailable
	}

	if s.isStopped() {
		return "", ErrServiceStopped
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Warn("request to search while a search is already in progress")
		return "", ErrSearchInProgress
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	status := RequestStatus{ID: id, Status: StatusPending, SubmittedAt: now, UpdatedAt: now}
	if err := s.setStatus(status); err != nil {
		s.busy.Store(false)
		return "", err
	}

	select {
	// This leads to s.runSearch being called
	case s.runC <- runRequest{id: id, request: request}:
		return id, nil
	case <-s.stopped:
		s.fail(&status, ErrServiceStopped)
		s.busy.Store(false)
		return "", ErrServiceStopped
	}
}

func (s *Service) isStopped() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

// Status returns the progress of a submitted search, including its result once complete. A
// search that was cancelled or timed out is failed but still carries its partial result.
func (s *Service) Status(id string) (*RequestStatus, error) {
	if s.requestStore == nil {
		return nil, ErrAsyncUnavailable
	}

	value, err := s.requestStore.Get(RequestsBucket, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestNotFound, err)
	}

	var status RequestStatus
	if err := json.Unmarshal([]byte(value), &status); err != nil {
		s.logger.Error("failed to unmarshal request status", "request_id", id, "err", err.Error())
		return nil, fmt.Errorf("invalid status value: %w", err)
	}

	if status.Status != StatusComplete && status.Status != StatusFailed {
		return &status, nil
	}

	resultValue, err := s.requestStore.Get(ResultsBucket, id)
	if err != nil {
		if status.Status == StatusFailed {
			return &status, nil
		}
		return nil, fmt.Errorf("failed to get result of %s: %w", id, err)
	}
	var result Result
	if err := json.Unmarshal([]byte(resultValue), &result); err != nil {
		s.logger.Error("failed to unmarshal search result", "request_id", id, "err", err.Error())
		return nil, fmt.Errorf("invalid result value: %w", err)
	}
	status.Result = &result

	return &status, nil
}

func (s *Service) run(ctx context.Context) {
	defer close(s.stopped)

	for {
		select {
		case req := <-s.runC:
			searchCtx, cancel := context.WithTimeout(ctx, maxSearchTime)
			s.runSearch(searchCtx, req)
			cancel()
			s.busy.Store(false)
		case <-ctx.Done():
			s.logger.Info("search service stopped", "reason", ctx.Err())
			return
		}
	}
}

func (s *Service) runSearch(ctx context.Context, req runRequest) {
	status, err := s.getStatus(req.id)
	if err != nil {
		s.logger.Error("failed to load pending request", "request_id", req.id, "err", err.Error())
		return
	}

	status.Status = StatusRunning
	status.UpdatedAt = time.Now().UTC()
	if err := s.setStatus(*status); err != nil {
		return
	}

	result, runErr := s.Run(ctx, req.request)
	if result == nil {
		s.fail(status, runErr)
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("failed to marshal search result", "request_id", req.id, "err", err.Error())
		s.fail(status, err)
		return
	}
	if err := s.requestStore.Set(ResultsBucket, req.id, string(data)); err != nil {
		s.logger.Error("failed to store search result", "request_id", req.id, "err", err.Error())
		s.fail(status, err)
		return
	}

	if runErr != nil {
		s.fail(status, runErr)
		return
	}

	status.Status = StatusComplete
	status.UpdatedAt = time.Now().UTC()
	s.setStatus(*status)
	s.logger.Info("search request complete", "request_id", req.id, "matches", result.Session.Count())
}

func (s *Service) fail(status *RequestStatus, err error) {
	s.logger.Error("search request failed", "request_id", status.ID, "err", err.Error())
	status.Status = StatusFailed
	status.Error = err.Error()
	status.UpdatedAt = time.Now().UTC()
	s.setStatus(*status)
}

// clearPreviousRequests drops requests left over from an earlier process. Searches are not
// kept between runs.
func (s *Service) clearPreviousRequests() {
	for _, bucket := range []string{RequestsBucket, ResultsBucket} {
		keys, err := s.requestStore.GetAllKeys(bucket)
		if err != nil {
			s.logger.Error("failed to list previous requests", "bucket", bucket, "err", err.Error())
			continue
		}
		for _, key := range keys {
			if err := s.requestStore.Delete(bucket, key); err != nil {
				s.logger.Error("failed to delete previous request", "bucket", bucket, "request_id", key, "err", err.Error())
			}
		}
		if len(keys) > 0 {
			s.logger.Info("cleared previous requests", "bucket", bucket, "count", len(keys))
		}
	}
}

func (s *Service) getStatus(id string) (*RequestStatus, error) {
	value, err := s.requestStore.Get(RequestsBucket, id)
	if err != nil {
		return nil, err
	}

	var status RequestStatus
	if err := json.Unmarshal([]byte(value), &status); err != nil {
		return nil, err
	}

	return &status, nil
}

func (s *Service) setStatus(status RequestStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		s.logger.Error("failed to marshal request status", "request_id", status.ID, "err", err.Error())
		return err
	}

	if err := s.requestStore.Set(RequestsBucket, status.ID, string(data)); err != nil {
		s.logger.Error("failed to update request status", "request_id", status.ID, "status", status.Status, "err", err.Error())
		return err
	}

	return nil
}

// IsClientError reports whether err was caused by the request rather than by the service.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRoot) || errors.Is(err, ErrInvalidResultCap) || errors.Is(err, variants.ErrInvalidThreshold)
}
