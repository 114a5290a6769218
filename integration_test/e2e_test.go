package hast_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hast"
	"github.com/hupe1980/hast/blobstore"
	"github.com/hupe1980/hast/internal/payload"
	"github.com/hupe1980/hast/internal/server"
	"github.com/hupe1980/hast/model"
	"github.com/hupe1980/hast/testutil"
)

type node struct {
	srv *httptest.Server
}

func startNode(t *testing.T, backend hast.Backend, locker hast.Locker) *node {
	t.Helper()

	s, err := hast.Open(context.Background(), backend)
	require.NoError(t, err)

	srv := httptest.NewServer(server.New(hast.NewGuarded(s, locker)).Handler())
	t.Cleanup(srv.Close)
	return &node{srv: srv}
}

// do is safe to call from any goroutine.
func (n *node) do(method, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(method, n.srv.URL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	resp, err := n.srv.Client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func insertBody(r model.InsertRequest) server.InsertBody {
	return server.InsertBody{Info: r.Info, Payload: payload.Encode(r.Records)}
}

func (n *node) insert(t *testing.T, r model.InsertRequest) {
	t.Helper()
	out, err := n.do(http.MethodPost, "/insert", insertBody(r))
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"ok"}`, string(out))
}

func (n *node) lookup(t *testing.T, hashes ...string) []string {
	t.Helper()
	out, err := n.do(http.MethodGet, "/lookup", model.LookupRequest{Hashes: hashes})
	require.NoError(t, err)

	var resp model.LookupResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	return resp.IDs()
}

func TestE2E_InsertRestartLookup(t *testing.T) {
	dir := t.TempDir()
	reports := testutil.NewRNG(1).Reports(50, 4, 20)

	first := startNode(t, hast.Local(dir), hast.NewExclusiveLocker())
	for _, r := range reports {
		first.insert(t, r)
	}

	before := make(map[string][]string)
	for i := range 20 {
		before[testutil.Hash(i)] = first.lookup(t, testutil.Hash(i))
	}
	first.srv.Close()

	second := startNode(t, hast.Local(dir), hast.NewSharedLocker(4))
	for h, ids := range before {
		assert.ElementsMatch(t, ids, second.lookup(t, h), "hash %s", h)
	}
}

func TestE2E_ConcurrentClients(t *testing.T) {
	n := startNode(t, hast.Remote(blobstore.NewMemoryStore()), hast.NewSharedLocker(8))
	reports := testutil.NewRNG(2).Reports(40, 3, 10)

	var wg sync.WaitGroup
	for _, r := range reports {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := n.do(http.MethodPost, "/insert", insertBody(r))
			if assert.NoError(t, err) {
				assert.JSONEq(t, `{"status":"ok"}`, string(out))
			}
			_, err = n.do(http.MethodGet, "/lookup", model.LookupRequest{Hashes: []string{testutil.Hash(0)}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	out, err := n.do(http.MethodGet, "/stats", nil)
	require.NoError(t, err)

	var stats struct {
		Reports int `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(out, &stats))
	assert.Equal(t, len(reports), stats.Reports)
}
