package tracker

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// The upstream service has been observed returning both a JSON document and
// decorated plain text for the same endpoint, so parsing degrades through
// three tiers instead of rejecting unrecognized shapes.

var (
	rankLine     = regexp.MustCompile(`^(.*\S)\s+(\d+)\s*RR$`)
	bracketLabel = regexp.MustCompile(`^.*\[(.*)\]$`)
)

// RankResult is the outcome of one rank lookup. An empty Rank means the
// body yielded no usable rank.
type RankResult struct {
	Rank string
	RR   int
}

// Resolved reports whether a rank label was extracted
func (r RankResult) Resolved() bool {
	return r.Rank != ""
}

// ParseRankBody extracts a rank and RR value from an upstream response body.
// Tiers, first match wins:
//  1. JSON document with a "rank" field at the top level or under "data".
//  2. Plain text matching "<label> <n>RR" after colon removal; a label
//     carrying a trailing "[inner]" suffix is reduced to the inner text.
//  3. The whole trimmed body as the rank label with RR 0.
//
// It never fails; callers decide what an unresolved result means.
func ParseRankBody(body []byte) RankResult {
	if result, ok := parseJSONBody(body); ok {
		return result
	}
	return parseTextBody(string(body))
}

func parseJSONBody(body []byte) (RankResult, bool) {
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return RankResult{}, false
	}

	payload := doc
	if nested, ok := doc["data"].(map[string]interface{}); ok {
		if _, ok := nested["rank"]; ok {
			payload = nested
		}
	}

	rawRank, ok := payload["rank"]
	if !ok {
		// Valid JSON but no usable shape; let the text tiers have it
		return RankResult{}, false
	}

	rank, _ := rawRank.(string)
	if rank == "" {
		rank = "Unranked"
	}

	rr := 0
	if v, ok := payload["rr"].(float64); ok {
		rr = int(v)
	}

	return RankResult{Rank: rank, RR: rr}, true
}

func parseTextBody(text string) RankResult {
	trimmed := strings.TrimSpace(text)
	normalized := strings.TrimSpace(strings.ReplaceAll(trimmed, ":", ""))

	if m := rankLine.FindStringSubmatch(normalized); m != nil {
		label := strings.TrimSpace(m[1])
		if bm := bracketLabel.FindStringSubmatch(label); bm != nil {
			label = strings.TrimSpace(bm[1])
		}
		if rr, err := strconv.Atoi(m[2]); err == nil {
			return RankResult{Rank: label, RR: rr}
		}
	}

	// Lossy fallback: keep the text (colons intact) so the value is still
	// visible to the user rather than dropped
	return RankResult{Rank: trimmed}
}
