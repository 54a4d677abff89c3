package resultstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"twinwatch/lib/ectapi"
	"twinwatch/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/resultstore")
	defer cleanup()

	store, err := NewStore[ectapi.MPEntry](filepath.Join(t.TempDir(), "mp"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	entries := []ectapi.MPEntry{
		{CandidateCode: "CANDIDATE-MP-100105", PartyCode: "PARTY-0031", VoteTotal: 32010, Rank: 1},
		{CandidateCode: "CANDIDATE-MP-100102", PartyCode: "PARTY-0010", VoteTotal: 18777, Rank: 2},
	}

	{
		err := store.Save(ctx, "1001", entries)
		require.NoError(t, err)

		got, ok, err := store.Load(ctx, "1001")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, entries, got)
	}
	{
		got, ok, err := store.Load(ctx, "1002")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, got)
	}
	{
		err := store.Save(ctx, "1002", nil)
		require.NoError(t, err)
		err = store.Save(ctx, "1101", entries[:1])
		require.NoError(t, err)

		areas, err := store.ListAreas(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"1001", "1002", "1101"}, areas)
	}
}

func TestLoadMalformed(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/resultstore")
	defer cleanup()

	dir := t.TempDir()
	store, err := NewStore[ectapi.PLEntry](dir)
	if err != nil {
		t.Fatal(err)
	}

	err = os.WriteFile(filepath.Join(dir, "1001.json"), []byte("{not json"), 0644)
	require.NoError(t, err)

	_, _, err = store.Load(context.Background(), "1001")
	require.Error(t, err)
}
