package testutil

import (
	"context"
	"fmt"
	"testing"
	"twinwatch/lib/ectapi"
	"twinwatch/lib/resultstore"
)

// MPEntry builds a constituency result entry. num is the candidate's
// ballot number within the area.
func MPEntry(area string, num int, party string, votes int64, rank int) ectapi.MPEntry {
	return ectapi.MPEntry{
		CandidateCode: fmt.Sprintf("CANDIDATE-MP-%s%02d", area, num),
		PartyCode:     party,
		VoteTotal:     votes,
		Rank:          rank,
	}
}

// PLEntry builds a party-list result entry.
func PLEntry(party string, votes int64, rank int) ectapi.PLEntry {
	return ectapi.PLEntry{
		PartyCode: party,
		VoteTotal: votes,
		Rank:      rank,
	}
}

// SaveArea writes one area's entries through a result store, failing
// the test on error.
func SaveArea[T any](t testing.TB, store resultstore.Store[T], area string, entries []T) {
	t.Helper()
	err := store.Save(context.Background(), area, entries)
	if err != nil {
		t.Fatal(err)
	}
}
