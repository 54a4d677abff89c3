package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"twinwatch/lib/ectapi"
	"twinwatch/lib/resultstore"
	"twinwatch/lib/telemetry"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/collector")
	defer cleanup()

	responses := map[string]string{
		"/mp/1001.json": `{"entries":[{"candidateCode":"CANDIDATE-MP-100105","partyCode":"PARTY-0031","voteTotal":32010,"rank":1}]}`,
		"/pl/1001.json": `{"entries":[{"partyCode":"PARTY-0105","voteTotal":1204,"rank":3}]}`,
		// 1002 exists in the constituency dataset only
		"/mp/1002.json": `{"entries":[{"candidateCode":"CANDIDATE-MP-100203","partyCode":"PARTY-0040","voteTotal":11000,"rank":1}]}`,
		// 1101 answers 500 on mp below, pl still exists
		"/pl/1101.json": `{"entries":[{"partyCode":"PARTY-0071","voteTotal":600,"rank":5}]}`,
	}

	var mu sync.Mutex
	requested := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested[r.URL.Path]++
		mu.Unlock()

		if r.URL.Path == "/mp/1101.json" {
			http.Error(w, "upstream broke", http.StatusInternalServerError)
			return
		}
		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer server.Close()

	client, err := ectapi.NewClient(ectapi.ClientOptions{BaseUrl: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	dataDir := t.TempDir()
	mp, err := resultstore.NewStore[ectapi.MPEntry](filepath.Join(dataDir, "mp"))
	require.NoError(t, err)
	pl, err := resultstore.NewStore[ectapi.PLEntry](filepath.Join(dataDir, "pl"))
	require.NoError(t, err)

	svc := NewService(client, mp, pl, Options{
		ProvinceStart: 10,
		ProvinceEnd:   11,
		MaxSeq:        5,
		Delay:         time.Millisecond,
	})
	ctx := context.Background()
	manifest, err := svc.Run(ctx)
	require.NoError(t, err)

	{
		require.NoError(t, uuid.Validate(manifest.RunId))
		_, err := time.Parse(time.RFC3339, manifest.StartedAt)
		require.NoError(t, err)
		_, err = time.Parse(time.RFC3339, manifest.FinishedAt)
		require.NoError(t, err)
	}
	{
		require.Equal(t, 2, manifest.MPFiles)
		require.Equal(t, 2, manifest.PLFiles)
		require.Equal(t, 1, manifest.PLMissing)
		require.Len(t, manifest.Failures, 1)
		require.Equal(t, "1101", manifest.Failures[0].Area)
		require.Equal(t, "mp", manifest.Failures[0].Dataset)
		require.Equal(t, 8, manifest.Requests)
	}
	{
		// not-found on 1003 must end province 10, later areas of the
		// block are never requested
		mu.Lock()
		defer mu.Unlock()
		require.Equal(t, 1, requested["/mp/1003.json"])
		require.Zero(t, requested["/mp/1004.json"])
		require.Zero(t, requested["/pl/1003.json"])
		require.Zero(t, requested["/mp/1103.json"])
	}
	{
		areas, err := mp.ListAreas(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"1001", "1002"}, areas)

		areas, err = pl.ListAreas(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"1001", "1101"}, areas)

		entries, ok, err := mp.Load(ctx, "1001")
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, entries, 1)
		require.Equal(t, "CANDIDATE-MP-100105", entries[0].CandidateCode)
	}
	{
		data, err := os.ReadFile(filepath.Join(dataDir, "collect-manifest.json"))
		require.NoError(t, err)

		var onDisk Manifest
		require.NoError(t, json.Unmarshal(data, &onDisk))
		require.Equal(t, manifest.RunId, onDisk.RunId)
		require.Equal(t, manifest.Requests, onDisk.Requests)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/collector")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entries":[]}`))
	}))
	defer server.Close()

	client, err := ectapi.NewClient(ectapi.ClientOptions{BaseUrl: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	dataDir := t.TempDir()
	mp, err := resultstore.NewStore[ectapi.MPEntry](filepath.Join(dataDir, "mp"))
	require.NoError(t, err)
	pl, err := resultstore.NewStore[ectapi.PLEntry](filepath.Join(dataDir, "pl"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(client, mp, pl, Options{Delay: time.Millisecond})
	manifest, err := svc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// the manifest is still written for the partial run
	_, statErr := os.Stat(filepath.Join(dataDir, "collect-manifest.json"))
	require.NoError(t, statErr)
	require.NotEmpty(t, manifest.FinishedAt)
}
