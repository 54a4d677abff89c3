package anomaly

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"twinwatch/lib/ectapi"
	"twinwatch/lib/resultstore"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MaxTwinRank is the deepest party-list rank that still counts as a
// twin match. Together with ExcludedSuffixes it is a fixed rule of
// the twin-number hypothesis, not a tunable.
const MaxTwinRank = 7

// ExcludedSuffixes never produce a match regardless of rank.
var ExcludedSuffixes = []string{"06", "09"}

func isExcluded(suffix string) bool {
	for _, s := range ExcludedSuffixes {
		if s == suffix {
			return true
		}
	}
	return false
}

// CandidateSuffix extracts the zero-padded 2-digit ballot number from
// a candidate code of the form "CANDIDATE-MP-<area><nn>". Reports
// false when the code does not belong to the area or carries no
// usable number.
func CandidateSuffix(candidateCode, area string) (string, bool) {
	rest, ok := strings.CutPrefix(candidateCode, "CANDIDATE-MP-"+area)
	if !ok || rest == "" {
		return "", false
	}
	num, err := strconv.Atoi(rest)
	if err != nil || num < 0 || num > 99 {
		return "", false
	}
	return fmt.Sprintf("%02d", num), true
}

// PartySuffix returns a party code's comparison key: its last 2
// characters when the code ends in 2 or more digits, or the single
// trailing digit zero-padded. Reports false for codes that do not end
// in a digit.
func PartySuffix(partyCode string) (string, bool) {
	digits := 0
	for digits < len(partyCode) {
		c := partyCode[len(partyCode)-1-digits]
		if c < '0' || c > '9' {
			break
		}
		digits++
	}
	switch {
	case digits == 0:
		return "", false
	case digits == 1:
		return "0" + partyCode[len(partyCode)-1:], true
	default:
		return partyCode[len(partyCode)-2:], true
	}
}

// Match is one flagged area: the winning constituency candidate's
// ballot number reappeared as the suffix of a top-ranked party-list
// code. Field names follow the published report file.
type Match struct {
	AreaCode       string `json:"area_code"`
	MPWinnerNumber string `json:"mp_winner_number"`
	MPWinnerParty  string `json:"mp_winner_party"`
	MPVotes        int64  `json:"mp_votes"`
	PLTwinParty    string `json:"pl_twin_party"`
	PLTwinRank     int    `json:"pl_twin_rank"`
	PLTwinVotes    int64  `json:"pl_twin_votes"`
	// the twin party's own constituency candidate in the same area
	MPTwinCandidateVotes int64 `json:"mp_twin_candidate_votes"`
	// twin party-list votes relative to the winner's votes
	RatioPLToMP  float64 `json:"ratio_pl_to_mp"`
	AnomalyScore int64   `json:"anomaly_score"`
	ProvinceId   string  `json:"province_id"`
	ProvinceName string  `json:"province_name"`
}

type Service struct {
	mp        resultstore.Store[ectapi.MPEntry]
	pl        resultstore.Store[ectapi.PLEntry]
	provinces map[string]string
}

// NewService builds a scanner over collected result stores. provinces
// maps 2-digit province ids to display names and may be nil.
func NewService(
	mp resultstore.Store[ectapi.MPEntry],
	pl resultstore.Store[ectapi.PLEntry],
	provinces map[string]string,
) Service {
	return Service{mp: mp, pl: pl, provinces: provinces}
}

// Scan walks every area with stored constituency results and reports
// the twin-number matches, sorted by anomaly score descending. Areas
// with no party-list file and areas with unusable data are skipped.
func (s Service) Scan(ctx context.Context) ([]Match, error) {
	ctx, span := tracer.Start(ctx, "Scan")
	defer span.End()

	areas, err := s.mp.ListAreas(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "list areas failed")
		span.RecordError(err)
		return nil, err
	}

	var matches []Match
	for _, area := range areas {
		match, ok, err := s.scanArea(ctx, area)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable area", "area", area, "err", err)
			continue
		}
		if ok {
			matches = append(matches, match)
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.AnomalyScore, a.AnomalyScore)
	})

	span.SetAttributes(
		attribute.Int("areas", len(areas)),
		attribute.Int("matches", len(matches)),
	)
	return matches, nil
}

func (s Service) scanArea(ctx context.Context, area string) (Match, bool, error) {
	if len(area) != 4 {
		return Match{}, false, nil
	}

	mpEntries, ok, err := s.mp.Load(ctx, area)
	if err != nil || !ok {
		return Match{}, false, err
	}
	plEntries, ok, err := s.pl.Load(ctx, area)
	if err != nil {
		return Match{}, false, err
	}
	if !ok {
		// the area was never published in the party-list dataset
		return Match{}, false, nil
	}
	if len(mpEntries) == 0 {
		return Match{}, false, nil
	}

	// entries arrive sorted by vote total, the first one is the winner
	winner := mpEntries[0]
	suffix, ok := CandidateSuffix(winner.CandidateCode, area)
	if !ok {
		return Match{}, false, nil
	}
	if isExcluded(suffix) {
		return Match{}, false, nil
	}

	twin, ok := findTwin(plEntries, suffix)
	if !ok {
		return Match{}, false, nil
	}

	var twinMPVotes int64
	for _, e := range mpEntries {
		if e.PartyCode == twin.PartyCode {
			twinMPVotes = e.VoteTotal
			break
		}
	}

	baseVotes := winner.VoteTotal
	if baseVotes <= 0 {
		baseVotes = 1
	}
	ratio := math.Round(float64(twin.VoteTotal)/float64(baseVotes)*10000) / 10000

	provinceId := area[:2]
	provinceName, ok := s.provinces[provinceId]
	if !ok {
		provinceName = "Unknown"
	}

	return Match{
		AreaCode:             area,
		MPWinnerNumber:       suffix,
		MPWinnerParty:        winner.PartyCode,
		MPVotes:              winner.VoteTotal,
		PLTwinParty:          twin.PartyCode,
		PLTwinRank:           twin.Rank,
		PLTwinVotes:          twin.VoteTotal,
		MPTwinCandidateVotes: twinMPVotes,
		RatioPLToMP:          ratio,
		AnomalyScore:         twin.VoteTotal,
		ProvinceId:           provinceId,
		ProvinceName:         provinceName,
	}, true, nil
}

// findTwin returns the best-ranked party-list entry whose code suffix
// equals the given one, considering only ranks 1 through MaxTwinRank.
func findTwin(entries []ectapi.PLEntry, suffix string) (ectapi.PLEntry, bool) {
	var best ectapi.PLEntry
	found := false
	for _, e := range entries {
		if e.Rank <= 0 || e.Rank > MaxTwinRank {
			continue
		}
		partySuffix, ok := PartySuffix(e.PartyCode)
		if !ok || partySuffix != suffix {
			continue
		}
		if !found || e.Rank < best.Rank {
			best = e
			found = true
		}
	}
	return best, found
}
