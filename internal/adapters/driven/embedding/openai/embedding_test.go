package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal OpenAI-compatible embeddings endpoint. Each input
// gets a vector derived from its position unless respond overrides the
// whole response.
type fakeAPI struct {
	respond      func(w http.ResponseWriter, req embeddingRequest)
	lastRequest  embeddingRequest
	requestCount int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/embeddings", func(w http.ResponseWriter, r *http.Request) {
		f.requestCount++
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.lastRequest = req
		if f.respond != nil {
			f.respond(w, req)
			return
		}
		var resp embeddingResponse
		for i := range req.Input {
			resp.Data = append(resp.Data, struct {
				Embedding []float64 `json:"embedding"`
				Index     int       `json:"index"`
			}{Embedding: []float64{float64(i), 1}, Index: i})
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	})
	return mux
}

func newTestService(t *testing.T, api *fakeAPI) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestEmbedBatch(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0, 1}, vectors[0])
	assert.Equal(t, []float32{1, 1}, vectors[1])
	assert.Equal(t, []string{"first", "second"}, api.lastRequest.Input)
	assert.Equal(t, DefaultModel, api.lastRequest.Model)
}

func TestEmbedBatch_ReordersByIndex(t *testing.T) {
	api := &fakeAPI{}
	api.respond = func(w http.ResponseWriter, req embeddingRequest) {
		// Data arrives reversed; the adapter must put it back.
		var resp embeddingResponse
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, struct {
				Embedding []float64 `json:"embedding"`
				Index     int       `json:"index"`
			}{Embedding: []float64{float64(i)}, Index: i})
		}
		json.NewEncoder(w).Encode(resp)
	}
	svc := newTestService(t, api)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float32{0}, vectors[0])
	assert.Equal(t, []float32{1}, vectors[1])
	assert.Equal(t, []float32{2}, vectors[2])
}

func TestEmbedBatch_MissingVector(t *testing.T) {
	api := &fakeAPI{}
	api.respond = func(w http.ResponseWriter, req embeddingRequest) {
		fmt.Fprint(w, `{"data":[{"embedding":[1],"index":0}]}`)
	}
	svc := newTestService(t, api)

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing vector")
}

func TestEmbedBatch_IndexOutOfRange(t *testing.T) {
	api := &fakeAPI{}
	api.respond = func(w http.ResponseWriter, req embeddingRequest) {
		fmt.Fprint(w, `{"data":[{"embedding":[1],"index":5}]}`)
	}
	svc := newTestService(t, api)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestEmbedBatch_APIError(t *testing.T) {
	api := &fakeAPI{}
	api.respond = func(w http.ResponseWriter, req embeddingRequest) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limit exceeded","type":"rate_limit"}}`)
	}
	svc := newTestService(t, api)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	vectors, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vectors)
	assert.Zero(t, api.requestCount, "no request for empty input")
}

func TestEmbed(t *testing.T) {
	api := &fakeAPI{}
	svc := newTestService(t, api)

	vector, err := svc.Embed(context.Background(), "query text")

	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, vector)
	assert.Equal(t, []string{"query text"}, api.lastRequest.Input)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, &fakeAPI{})
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_BadKey(t *testing.T) {
	srv := httptest.NewServer((&fakeAPI{}).handler())
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "wrong-key", BaseURL: srv.URL})
	require.NoError(t, err)

	assert.Error(t, svc.Ping(context.Background()))
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "test-key"})

	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 1536, svc.Dimensions())
}

func TestNewEmbeddingService_KnownModels(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "test-key", Model: "text-embedding-3-large"})

	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}
