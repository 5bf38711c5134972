package search

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/meghashyamc/fuzzyfind/logger"
	"github.com/meghashyamc/fuzzyfind/services/variants"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{buckets: map[string]map[string]string{
		RequestsBucket: {},
		ResultsBucket:  {},
	}}
}

func (m *memoryStore) Set(bucket string, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket][key] = value
	return nil
}

func (m *memoryStore) Get(bucket string, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.buckets[bucket][key]
	if !ok {
		return "", fmt.Errorf("key not found: %s", key)
	}
	return value, nil
}

func (m *memoryStore) Delete(bucket string, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buckets[bucket], key)
	return nil
}

func (m *memoryStore) GetAllKeys(bucket string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.buckets[bucket] {
		keys = append(keys, key)
	}
	return keys, nil
}

func (m *memoryStore) Close() error {
	return nil
}

var testVocabulary = variants.NewVocabulary([]string{"cat", "bat", "hat", "colour", "color", "report"})

func TestServiceRun(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	writeTree(assert, root, map[string]string{
		"bat.txt":    "",
		"notes.md":   "the hat is on the mat\n",
		"dog.txt":    "",
		"kitten.txt": "",
	})
	service := New(context.Background(), logger.NewDiscard(), testVocabulary, 2, nil)

	result, err := service.Run(context.Background(), Request{
		Root:           root,
		Keyword:        "cat",
		SearchContents: true,
		Threshold:      1,
		MaxResults:     10,
		SortEntries:    true,
	})
	assert.NoError(err)

	assert.Equal("cat", result.Keyword)
	assert.Equal([]string{"bat", "hat"}, result.Variants)
	assert.Equal([]MatchRecord{
		NameMatch(filepath.Join(root, "bat.txt")),
		ContentMatch(filepath.Join(root, "notes.md"), 1, "the hat is on the mat"),
	}, result.Session.Records)
}

func TestServiceRunRejectsBadRequests(t *testing.T) {
	service := New(context.Background(), logger.NewDiscard(), testVocabulary, 1, nil)
	root := t.TempDir()

	testCases := []struct {
		name     string
		request  Request
		expected error
	}{
		{name: "MissingRoot", request: Request{Root: filepath.Join(root, "missing"), Keyword: "cat", MaxResults: 1}, expected: ErrInvalidRoot},
		{name: "ZeroCap", request: Request{Root: root, Keyword: "cat", MaxResults: 0}, expected: ErrInvalidResultCap},
		{name: "BadThreshold", request: Request{Root: root, Keyword: "cat", MaxResults: 1, Threshold: 2}, expected: variants.ErrInvalidThreshold},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			result, err := service.Run(context.Background(), testCase.request)
			assert.Nil(result)
			assert.ErrorIs(err, testCase.expected)
			assert.True(IsClientError(err))
		})
	}
}

func TestServiceSubmitWithoutStore(t *testing.T) {
	assert := require.New(t)
	service := New(context.Background(), logger.NewDiscard(), testVocabulary, 1, nil)

	_, err := service.Submit(Request{})
	assert.ErrorIs(err, ErrAsyncUnavailable)
	_, err = service.Status("id")
	assert.ErrorIs(err, ErrAsyncUnavailable)
}

func waitForStatus(assert *require.Assertions, service *Service, id string, want string) *RequestStatus {
	for start := time.Now(); time.Since(start) < 10*time.Second; time.Sleep(20 * time.Millisecond) {
		status, err := service.Status(id)
		assert.NoError(err)
		if status.Status == want {
			return status
		}
	}
	assert.Fail("timed out waiting for search status", "%s never reached %s", id, want)
	return nil
}

func TestServiceSubmitAndStatus(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	writeTree(assert, root, map[string]string{"report.txt": "", "sub/report.md": "report\n"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service := New(ctx, logger.NewDiscard(), testVocabulary, 1, newMemoryStore())

	id, err := service.Submit(Request{Root: root, Keyword: "report", SearchContents: true, MaxResults: 10, SortEntries: true})
	assert.NoError(err)

	status := waitForStatus(assert, service, id, StatusComplete)
	assert.Equal(id, status.ID)
	assert.NotNil(status.Result)
	assert.Equal([]MatchRecord{
		NameMatch(filepath.Join(root, "report.txt")),
		ContentMatch(filepath.Join(root, "sub/report.md"), 1, "report"),
		NameMatch(filepath.Join(root, "sub/report.md")),
	}, status.Result.Session.Records)
}

func TestServiceSubmitInvalidRootFails(t *testing.T) {
	assert := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service := New(ctx, logger.NewDiscard(), testVocabulary, 1, newMemoryStore())

	id, err := service.Submit(Request{Root: filepath.Join(t.TempDir(), "missing"), Keyword: "cat", MaxResults: 1})
	assert.NoError(err)

	status := waitForStatus(assert, service, id, StatusFailed)
	assert.Contains(status.Error, "invalid search root")
	assert.Nil(status.Result)
}

func TestServiceStatusUnknownID(t *testing.T) {
	assert := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service := New(ctx, logger.NewDiscard(), testVocabulary, 1, newMemoryStore())

	_, err := service.Status("unknown")
	assert.ErrorIs(err, ErrRequestNotFound)
}

func TestServiceClearsPreviousRequests(t *testing.T) {
	assert := require.New(t)
	store := newMemoryStore()
	assert.NoError(store.Set(RequestsBucket, "old", `{"id":"old","status":"complete"}`))
	assert.NoError(store.Set(ResultsBucket, "old", `{}`))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service := New(ctx, logger.NewDiscard(), testVocabulary, 1, store)

	_, err := service.Status("old")
	assert.ErrorIs(err, ErrRequestNotFound)
}

// gatedStore holds back reads until release is closed, keeping the worker busy.
type gatedStore struct {
	*memoryStore
	release chan struct{}
}

func (g *gatedStore) Get(bucket string, key string) (string, error) {
	<-g.release
	return g.memoryStore.Get(bucket, key)
}

func TestServiceSubmitWhileBusy(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &gatedStore{memoryStore: newMemoryStore(), release: make(chan struct{})}
	service := New(ctx, logger.NewDiscard(), testVocabulary, 1, store)

	first, err := service.Submit(Request{Root: root, Keyword: "cat", MaxResults: 1})
	assert.NoError(err)

	_, err = service.Submit(Request{Root: root, Keyword: "bat", MaxResults: 1})
	assert.ErrorIs(err, ErrSearchInProgress)

	close(store.release)
	waitForStatus(assert, service, first, StatusComplete)

	assert.Eventually(func() bool {
		_, err := service.Submit(Request{Root: root, Keyword: "bat", MaxResults: 1})
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestServiceSubmitAfterShutdown(t *testing.T) {
	assert := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	service := New(ctx, logger.NewDiscard(), testVocabulary, 1, newMemoryStore())

	cancel()
	<-service.stopped

	for range 2 {
		_, err := service.Submit(Request{Root: t.TempDir(), Keyword: "cat", MaxResults: 1})
		assert.ErrorIs(err, ErrServiceStopped)
	}
	assert.False(service.busy.Load())
}

func TestServiceCancelledSearchKeepsPartialResult(t *testing.T) {
	assert := require.New(t)
	root := t.TempDir()
	writeTree(assert, root, map[string]string{"cat.txt": ""})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &gatedStore{memoryStore: newMemoryStore(), release: make(chan struct{})}
	service := New(ctx, logger.NewDiscard(), variants.NewVocabulary(nil), 1, store)

	id, err := service.Submit(Request{Root: root, Keyword: "cat", MaxResults: 10})
	assert.NoError(err)

	// The worker has picked the request up and is waiting on the store.
	cancel()
	close(store.release)

	status := waitForStatus(assert, service, id, StatusFailed)
	assert.Contains(status.Error, context.Canceled.Error())
	assert.NotNil(status.Result)
	assert.True(status.Result.Session.Cancelled)
	assert.Equal("cat", status.Result.Keyword)
}
