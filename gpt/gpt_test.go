package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuotaStore struct {
	mu     sync.Mutex
	quotas map[string]int
}

func newFakeQuotaStore(quotas map[string]int) *fakeQuotaStore {
	return &fakeQuotaStore{quotas: quotas}
}

func (s *fakeQuotaStore) GetQuota(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quota, ok := s.quotas[userID]
	if !ok {
		return 0, ErrOrganizerNotFound
	}
	return quota, nil
}

func (s *fakeQuotaStore) DecrementQuota(_ context.Context, userID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quota, ok := s.quotas[userID]
	if !ok {
		return 0, false, ErrOrganizerNotFound
	}
	if quota < 1 {
		return 0, false, nil
	}
	s.quotas[userID] = quota - 1
	return quota - 1, true, nil
}

func (s *fakeQuotaStore) get(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quotas[userID]
}

type fakeGenerator struct {
	reply string
	err   error
	calls atomic.Int32
}

func (g *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls.Add(1)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func TestGenerateDescriptionSuccess(t *testing.T) {
	store := newFakeQuotaStore(map[string]int{"org1": 3})
	gen := &fakeGenerator{reply: "A night of live music by the river."}
	svc := &QuotaService{Quota: store, Gen: gen}

	description, quota, err := svc.GenerateDescription(context.Background(), "org1", "summer festival")
	require.NoError(t, err)
	assert.Equal(t, "A night of live music by the river.", description)
	assert.Equal(t, 2, quota)
	assert.Equal(t, 2, store.get("org1"))
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestGenerateDescriptionOrganizerNotFound(t *testing.T) {
	store := newFakeQuotaStore(map[string]int{})
	gen := &fakeGenerator{reply: "unused"}
	svc := &QuotaService{Quota: store, Gen: gen}

	_, _, err := svc.GenerateDescription(context.Background(), "ghost", "prompt")
	assert.ErrorIs(t, err, ErrOrganizerNotFound)
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestGenerateDescriptionQuotaExhausted(t *testing.T) {
	store := newFakeQuotaStore(map[string]int{"org1": 0})
	gen := &fakeGenerator{reply: "unused"}
	svc := &QuotaService{Quota: store, Gen: gen}

	_, _, err := svc.GenerateDescription(context.Background(), "org1", "prompt")
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	// The generator is never called when quota is already spent.
	assert.Equal(t, int32(0), gen.calls.Load())
}

func TestGenerateDescriptionUpstreamFailureBurnsNoQuota(t *testing.T) {
	store := newFakeQuotaStore(map[string]int{"org1": 3})
	gen := &fakeGenerator{err: errors.New("api timeout")}
	svc := &QuotaService{Quota: store, Gen: gen}

	_, _, err := svc.GenerateDescription(context.Background(), "org1", "prompt")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 3, store.get("org1"))
}

func TestGenerateDescriptionConcurrentQuotaNeverNegative(t *testing.T) {
	const quota = 5
	const callers = 10

	store := newFakeQuotaStore(map[string]int{"org1": quota})
	gen := &fakeGenerator{reply: "generated"}
	svc := &QuotaService{Quota: store, Gen: gen}

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.GenerateDescription(context.Background(), "org1", "prompt")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrQuotaExhausted)
		}
	}
	assert.Equal(t, quota, succeeded)
	assert.Equal(t, 0, store.get("org1"))
}

func TestChatClientGenerate(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "A Night to Remember"}},
			},
		})
	}))
	defer srv.Close()

	client := &ChatClient{
		APIURL: srv.URL,
		APIKey: "test-key",
		Model:  "gpt-4o-mini",
		HTTP:   &http.Client{Timeout: 5 * time.Second},
	}

	out, err := client.Generate(context.Background(), "Write a description for a jazz night")
	require.NoError(t, err)
	assert.Equal(t, "A Night to Remember", out)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "Write a description for a jazz night", gotReq.Messages[0].Content)
}

func TestChatClientGenerateUpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := &ChatClient{APIURL: srv.URL, HTTP: srv.Client()}

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatClientGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := &ChatClient{APIURL: srv.URL, HTTP: srv.Client()}

	_, err := client.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
