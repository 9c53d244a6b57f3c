package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

const (
	TotalArcs          = 5
	OptionsPerQuestion = 4

	topTierPercent = 80 // percent
	midTierPercent = 60 // percent
)

// TierLevel is the bucket a finished realm quiz falls into.
type TierLevel string

const (
	TierTop    TierLevel = "top"
	TierMid    TierLevel = "mid"
	TierBottom TierLevel = "bottom"
)

// ComputeResultTier buckets score/total: >=80% top, >=60% mid, else bottom.
// Integer math keeps 4/5 and 3/5 exactly on their boundaries.
func ComputeResultTier(score, total int) TierLevel {
	if total <= 0 {
		return TierBottom
	}
	switch {
	case score*100 >= topTierPercent*total:
		return TierTop
	case score*100 >= midTierPercent*total:
		return TierMid
	default:
		return TierBottom
	}
}

func percentOf(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

func validArc(arc int) bool {
	return arc >= 1 && arc <= TotalArcs
}

func validOption(option int) bool {
	return option >= 0 && option < OptionsPerQuestion
}

func sortedArcs(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Ints(out)
	return out
}

// ===== journey snapshot codec =====

// journeySnapshot is the persisted shape:
// {"completedArcs":[1,2],"selectedAnswers":{"3":1}}
type journeySnapshot struct {
	CompletedArcs   []int       `json:"completedArcs"`
	SelectedAnswers map[int]int `json:"selectedAnswers"`
}

func encodeSnapshot(s JourneyState) ([]byte, error) {
	snap := journeySnapshot{
		CompletedArcs:   sortedArcs(s.CompletedArcs),
		SelectedAnswers: make(map[int]int, len(s.SelectedAnswers)),
	}
	for arc, opt := range s.SelectedAnswers {
		snap.SelectedAnswers[arc] = opt
	}
	return json.Marshal(snap)
}

func decodeSnapshot(raw []byte) (JourneyState, error) {
	var snap journeySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return NewJourneyState(), fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	st := NewJourneyState()
	for _, arc := range snap.CompletedArcs {
		if !validArc(arc) {
			return NewJourneyState(), fmt.Errorf("%w: arc %d out of range", ErrMalformedSnapshot, arc)
		}
		st.CompletedArcs[arc] = struct{}{}
	}
	for arc, opt := range snap.SelectedAnswers {
		if !validArc(arc) || !validOption(opt) {
			return NewJourneyState(), fmt.Errorf("%w: answer %d=%d out of range", ErrMalformedSnapshot, arc, opt)
		}
		st.SelectedAnswers[arc] = opt
	}
	return st, nil
}

// decodeSnapshotStrict is used for snapshots handed in by a caller: the
// document must be an object carrying completedArcs and no unknown fields.
func decodeSnapshotStrict(raw []byte) (JourneyState, error) {
	var doc struct {
		CompletedArcs   *[]int      `json:"completedArcs"`
		SelectedAnswers map[int]int `json:"selectedAnswers"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return NewJourneyState(), fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc.CompletedArcs == nil {
		return NewJourneyState(), fmt.Errorf("%w: completedArcs missing", ErrMalformedSnapshot)
	}
	return decodeSnapshot(raw)
}
