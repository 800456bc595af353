package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afinucci/Design-Copilot-sub000/internal/relstore"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/engine"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/reference"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/requirements"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/textgen"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/validation"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Layout.Seed = 11
	table := reference.Default()
	svc, err := engine.New(cfg, engine.Deps{
		Table:     table,
		Store:     relstore.NewStaticStore(relstore.DefaultRules()),
		Generator: textgen.NewRuleBased(table),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(New(svc, "", 0, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/generate", `{"explicitRooms": ["Raw Material Storage", "Weighing Room", "Granulation"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var l facility.Layout
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&l))
	assert.Len(t, l.Shapes, 3)
	assert.NotEmpty(t, l.DoorConnections)
	assert.NotNil(t, l.Report)
	assert.Greater(t, l.Metadata.TotalArea, 0.0)
}

func TestGenerateXLSX(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/api/generate?format=xlsx", `{"description": "weighing room and granulation"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestGenerateBadRequests(t *testing.T) {
	ts := newTestServer(t)
	cases := map[string]string{
		"malformed":   `{"explicitRooms": [`,
		"empty":       `{}`,
		"bad style":   `{"explicitRooms": ["Office"], "constraints": {"layoutStyle": "zigzag"}}`,
		"blank rooms": `{"explicitRooms": ["  "]}`,
	}
	for name, body := range cases {
		resp := post(t, ts.URL+"/api/generate", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload), name)
		assert.NotEmpty(t, payload["error"], name)
	}
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)

	gen := post(t, ts.URL+"/api/generate", `{"explicitRooms": ["Weighing Room", "Granulation"]}`)
	require.Equal(t, http.StatusOK, gen.StatusCode)
	var l facility.Layout
	require.NoError(t, json.NewDecoder(gen.Body).Decode(&l))

	l.Shapes = append(l.Shapes, l.Shapes[0])
	body, err := json.Marshal(l)
	require.NoError(t, err)

	resp := post(t, ts.URL+"/api/validate", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report validation.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.False(t, report.Valid, "a duplicated shape must fail validation")

	bad := post(t, ts.URL+"/api/validate", "not json")
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestReference(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/reference")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Rooms []reference.Record `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, reference.Default().Len(), len(payload.Rooms))
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/generate")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("resolving requirements: %w", requirements.ErrNoRooms), http.StatusBadRequest},
		{fmt.Errorf("extracting rooms: %w", textgen.ErrMalformed), http.StatusBadGateway},
		{fmt.Errorf("retrieving relationships: %w", relations.ErrLookup), http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestStartStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := New(nil, "127.0.0.1:0", 0, nil)
	assert.NoError(t, srv.Start(ctx))
}
