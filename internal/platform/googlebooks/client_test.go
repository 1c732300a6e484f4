package googlebooks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVolumes serves a fixed catalog of total volumes, paged by startIndex/maxResults.
// failAt makes the request with that zero-based ordinal return 500.
type fakeVolumes struct {
	mu       sync.Mutex
	total    int
	pageCap  int
	failAt   int
	requests []pageRequest
}

type pageRequest struct {
	q          string
	key        string
	maxResults int
	startIndex int
}

func newFakeVolumes(total int) *fakeVolumes {
	return &fakeVolumes{total: total, pageCap: MaxPageSize, failAt: -1}
}

func (f *fakeVolumes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	q := r.URL.Query()
	maxResults, _ := strconv.Atoi(q.Get("maxResults"))
	startIndex, _ := strconv.Atoi(q.Get("startIndex"))
	f.requests = append(f.requests, pageRequest{q: q.Get("q"), key: q.Get("key"), maxResults: maxResults, startIndex: startIndex})
	ordinal := len(f.requests) - 1
	f.mu.Unlock()

	if ordinal == f.failAt {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend error"}}`))
		return
	}

	n := min(maxResults, f.pageCap)
	resp := VolumesResponse{TotalItems: f.total}
	for i := startIndex; i < startIndex+n && i < f.total; i++ {
		resp.Items = append(resp.Items, Volume{ID: fmt.Sprintf("vol-%d", i), VolumeInfo: VolumeInfo{Title: fmt.Sprintf("Book %d", i)}})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeVolumes) batchSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.maxResults
	}
	return out
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithPageDelay(0))
}

func TestClient_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("non-positive maxResults issues no request", func(t *testing.T) {
		fake := newFakeVolumes(100)
		c := newTestClient(t, fake)

		assert.Empty(t, c.Search(ctx, "dune", 0))
		assert.Empty(t, c.Search(ctx, "dune", -3))
		assert.Empty(t, fake.batchSizes())
	})

	t.Run("last batch is the exact remainder", func(t *testing.T) {
		fake := newFakeVolumes(100)
		c := newTestClient(t, fake)

		got := c.Search(ctx, "dune", 45)

		require.Len(t, got, 45)
		assert.Equal(t, []int{40, 5}, fake.batchSizes())
		assert.Equal(t, "vol-0", got[0].ID)
		assert.Equal(t, "vol-44", got[44].ID)
	})

	t.Run("sends query, key and advancing start index", func(t *testing.T) {
		fake := newFakeVolumes(100)
		c := newTestClient(t, fake)

		c.Search(ctx, "frank herbert", 80)

		require.Len(t, fake.requests, 2)
		assert.Equal(t, pageRequest{q: "frank herbert", key: "test-key", maxResults: 40, startIndex: 0}, fake.requests[0])
		assert.Equal(t, pageRequest{q: "frank herbert", key: "test-key", maxResults: 40, startIndex: 40}, fake.requests[1])
	})

	t.Run("stops when the service runs out of items", func(t *testing.T) {
		fake := newFakeVolumes(50)
		c := newTestClient(t, fake)

		got := c.Search(ctx, "dune", 100)

		assert.Len(t, got, 50)
		// 40, then 40 (10 returned), then 40 (empty page ends paging)
		assert.Equal(t, []int{40, 40, 40}, fake.batchSizes())
	})

	t.Run("short pages advance the cursor by items received", func(t *testing.T) {
		fake := newFakeVolumes(5)
		fake.pageCap = 4
		c := newTestClient(t, fake)

		got := c.Search(ctx, "dune", 5)

		require.Len(t, got, 5)
		assert.Equal(t, []int{5, 1}, fake.batchSizes())
		assert.Equal(t, 4, fake.requests[1].startIndex)
	})

	t.Run("failure on first page returns empty", func(t *testing.T) {
		fake := newFakeVolumes(100)
		fake.failAt = 0
		c := newTestClient(t, fake)

		got := c.Search(ctx, "dune", 10)

		assert.Empty(t, got)
		assert.Len(t, fake.requests, 1)
	})

	t.Run("failure mid-way returns partial results", func(t *testing.T) {
		fake := newFakeVolumes(200)
		fake.failAt = 1
		c := newTestClient(t, fake)

		got := c.Search(ctx, "dune", 120)

		assert.Len(t, got, 40)
		assert.Len(t, fake.requests, 2)
	})

	t.Run("undecodable body is a failure", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))

		assert.Empty(t, c.Search(ctx, "dune", 10))
	})

	t.Run("absent items field ends paging", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":0}`))
		}))

		assert.Empty(t, c.Search(ctx, "nothing", 10))
	})

	t.Run("never returns more than requested", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := VolumesResponse{}
			for i := 0; i < 10; i++ {
				resp.Items = append(resp.Items, Volume{ID: strconv.Itoa(i)})
			}
			_ = json.NewEncoder(w).Encode(resp)
		}))

		assert.Len(t, c.Search(ctx, "dune", 3), 3)
	})

	t.Run("cancelled context returns what was collected", func(t *testing.T) {
		fake := newFakeVolumes(100)
		c := newTestClient(t, fake)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.Empty(t, c.Search(cctx, "dune", 10))
	})
}

func TestClient_PageDelay(t *testing.T) {
	fake := newFakeVolumes(100)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c := NewClient("k", WithBaseURL(srv.URL), WithPageDelay(50*time.Millisecond))

	start := time.Now()
	got := c.Search(context.Background(), "dune", 120)

	assert.Len(t, got, 100)
	// four requests (40, 40, 40 with 20 returned, then empty) → three pauses
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestClient_PageDelay_PausesAfterSlowPage(t *testing.T) {
	const (
		serveTime = 150 * time.Millisecond
		delay     = 100 * time.Millisecond
	)
	fake := newFakeVolumes(100)

	var mu sync.Mutex
	var arrived, served []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrived = append(arrived, time.Now())
		mu.Unlock()

		time.Sleep(serveTime)
		fake.ServeHTTP(w, r)

		mu.Lock()
		served = append(served, time.Now())
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)
	c := NewClient("k", WithBaseURL(srv.URL), WithPageDelay(delay))

	got := c.Search(context.Background(), "dune", 45)

	require.Len(t, got, 45)
	assert.Equal(t, []int{40, 5}, fake.batchSizes())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, arrived, 2)
	require.Len(t, served, 2)
	assert.GreaterOrEqual(t, arrived[1].Sub(served[0]), delay, "second page must wait the full delay after the first one completes")
}

func TestClient_PageDelay_NoPauseAfterLastPage(t *testing.T) {
	fake := newFakeVolumes(100)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c := NewClient("k", WithBaseURL(srv.URL), WithPageDelay(time.Second))

	start := time.Now()
	got := c.Search(context.Background(), "dune", 40)

	assert.Len(t, got, 40)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_PageDelay_CancelledDuringPause(t *testing.T) {
	fake := newFakeVolumes(100)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c := NewClient("k", WithBaseURL(srv.URL), WithPageDelay(time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	got := c.Search(ctx, "dune", 80)

	assert.Len(t, got, 40)
	assert.Equal(t, []int{40}, fake.batchSizes())
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestAPIError(t *testing.T) {
	assert.Equal(t, "unexpected status code: 429", (&APIError{StatusCode: 429}).Error())
	assert.Equal(t, "unexpected status code: 403: key invalid", (&APIError{StatusCode: 403, Message: "key invalid"}).Error())
}

func TestVolume_Ebook(t *testing.T) {
	yes, no := true, false

	assert.False(t, Volume{}.Ebook())
	assert.True(t, Volume{VolumeInfo: VolumeInfo{IsEbook: &yes}}.Ebook())
	assert.False(t, Volume{VolumeInfo: VolumeInfo{IsEbook: &yes}, SaleInfo: &SaleInfo{IsEbook: &no}}.Ebook())
	assert.True(t, Volume{SaleInfo: &SaleInfo{IsEbook: &yes}}.Ebook())
	assert.Equal(t, "", Volume{}.Saleability())
	assert.Equal(t, "FREE", Volume{SaleInfo: &SaleInfo{Saleability: "FREE"}}.Saleability())
}
