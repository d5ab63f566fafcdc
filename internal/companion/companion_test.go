package companion_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/companion"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `{
  "name": "A. Watermelon",
  "group": "Codeforces - Beta Round #4",
  "url": "https://codeforces.com/problemset/problem/4/A",
  "interactive": false,
  "memoryLimit": 64,
  "timeLimit": 1000,
  "tests": [
    {"input": "8\n", "output": "YES\n"},
    {"input": "3\n", "output": "NO\n"}
  ],
  "testType": "single",
  "input": {"type": "stdin"},
  "output": {"type": "stdout"}
}`

type failingSaver struct{}

func (failingSaver) Add(*models.Problem) error { return errors.New("disk full") }

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReceiveProblem(t *testing.T) {
	store, err := storage.OpenProblemStore(t.TempDir(), nil)
	require.NoError(t, err)
	srv := companion.New("", store, nil)
	var notified *models.Problem
	srv.OnProblem = func(p *models.Problem) { notified = p }

	rec := post(t, srv.Handler(), payload)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Problem received", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	p, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "A. Watermelon", p.Name)
	assert.EqualValues(t, 64, p.MemoryLimitMB)
	assert.EqualValues(t, 1000, p.TimeLimitMs)
	require.Len(t, p.Tests, 2)
	assert.Equal(t, "8\n", p.Tests[0].Input)
	assert.Equal(t, "NO\n", p.Tests[1].ExpectedOutput)
	assert.Equal(t, models.Pending, p.Tests[0].Status)
	assert.NotEqual(t, p.Tests[0].ID, p.Tests[1].ID)
	require.NotNil(t, notified)
	assert.Equal(t, p.ID, notified.ID)
}

func TestReceiveProblemBadJSON(t *testing.T) {
	store, err := storage.OpenProblemStore(t.TempDir(), nil)
	require.NoError(t, err)
	rec := post(t, companion.New("", store, nil).Handler(), `{"name": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestReceiveProblemSaveFailed(t *testing.T) {
	rec := post(t, companion.New("", failingSaver{}, nil).Handler(), payload)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Save failed")
}

func TestPreflight(t *testing.T) {
	srv := companion.New("", failingSaver{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestToProblemDefaults(t *testing.T) {
	p := companion.ToProblem(apiProblem())
	assert.EqualValues(t, models.DefaultMemoryLimitMB, p.MemoryLimitMB)
	assert.EqualValues(t, models.DefaultTimeLimitMs, p.TimeLimitMs)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	store, err := storage.OpenProblemStore(t.TempDir(), nil)
	require.NoError(t, err)
	srv := companion.New("", store, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "Problem received", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func apiProblem() api.CompanionProblem {
	return api.CompanionProblem{Name: "B", Tests: []api.CompanionTest{{Input: "1", Output: "1"}}}
}
