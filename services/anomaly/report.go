package anomaly

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"twinwatch/lib/timezone"
)

type Metadata struct {
	Description       string `json:"description"`
	Criteria          string `json:"criteria"`
	GeneratedAt       string `json:"generated_at"`
	TotalAreasFlagged int    `json:"total_areas_flagged"`
}

type ProvinceStat struct {
	Id              string   `json:"id"`
	Name            string   `json:"name"`
	Count           int      `json:"count"`
	TotalGhostVotes int64    `json:"total_ghost_votes"`
	Areas           []string `json:"areas"`
}

type PartyStat struct {
	PartyCode       string         `json:"party_code"`
	Count           int            `json:"count"`
	TotalGhostVotes int64          `json:"total_ghost_votes"`
	Provinces       map[string]int `json:"provinces"`
}

// Report is the file the published site fetches. Anomalies keep their
// scan order (anomaly score descending); province stats are sorted by
// ghost votes, party stats by flagged area count.
type Report struct {
	Metadata      Metadata       `json:"metadata"`
	Anomalies     []Match        `json:"anomalies"`
	ProvinceStats []ProvinceStat `json:"province_stats"`
	MPPartyStats  []PartyStat    `json:"mp_party_stats"`
}

func BuildReport(matches []Match) Report {
	provinceIndex := map[string]int{}
	provinces := []ProvinceStat{}
	for _, m := range matches {
		i, ok := provinceIndex[m.ProvinceId]
		if !ok {
			i = len(provinces)
			provinceIndex[m.ProvinceId] = i
			provinces = append(provinces, ProvinceStat{Id: m.ProvinceId, Name: m.ProvinceName})
		}
		provinces[i].Count++
		provinces[i].TotalGhostVotes += m.PLTwinVotes
		provinces[i].Areas = append(provinces[i].Areas, m.AreaCode)
	}
	slices.SortStableFunc(provinces, func(a, b ProvinceStat) int {
		return cmp.Compare(b.TotalGhostVotes, a.TotalGhostVotes)
	})

	partyIndex := map[string]int{}
	parties := []PartyStat{}
	for _, m := range matches {
		i, ok := partyIndex[m.MPWinnerParty]
		if !ok {
			i = len(parties)
			partyIndex[m.MPWinnerParty] = i
			parties = append(parties, PartyStat{
				PartyCode: m.MPWinnerParty,
				Provinces: map[string]int{},
			})
		}
		parties[i].Count++
		parties[i].TotalGhostVotes += m.PLTwinVotes
		parties[i].Provinces[m.ProvinceName]++
	}
	slices.SortStableFunc(parties, func(a, b PartyStat) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if matches == nil {
		matches = []Match{}
	}
	return Report{
		Metadata: Metadata{
			Description: "Anomaly detection report based on the twin number hypothesis (buy 1 get 2)",
			Criteria: fmt.Sprintf(
				"Winning candidate number matches a top %d party list code suffix, excluding %s",
				MaxTwinRank, strings.Join(ExcludedSuffixes, ", "),
			),
			GeneratedAt:       timezone.Now().Format(time.RFC3339),
			TotalAreasFlagged: len(matches),
		},
		Anomalies:     matches,
		ProvinceStats: provinces,
		MPPartyStats:  parties,
	}
}

func WriteReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
