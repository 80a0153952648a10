package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Progress is a user's long lived score history, one ledger per user.
// Score holds repeating "category,score,possible," triples.
type Progress struct {
	ID      int64
	UserID  string
	Score   string
	Version int64
}

// CategoryScore is one category's running totals.
type CategoryScore struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
	Possible int    `json:"possible"`
	Percent  int    `json:"percent"`
}

func NewProgress(userID string) *Progress {
	return &Progress{UserID: userID}
}

func categoryTriplePattern(category string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|,)` + regexp.QuoteMeta(category) + `,(\d+),(\d+),`)
}

// UpdateScore adds the absolute deltas to the category's triple, appending a
// new triple when the category has none yet. It reports whether the ledger changed.
// The caller is responsible for checking that the category exists.
func (p *Progress) UpdateScore(category string, scoreDelta, possibleDelta int) bool {
	if category == "" || strings.Contains(category, ",") {
		return false
	}
	scoreDelta, possibleDelta = absInt(scoreDelta), absInt(possibleDelta)

	loc := categoryTriplePattern(category).FindStringSubmatchIndex(p.Score)
	if loc == nil {
		p.Score += category + "," + strconv.Itoa(scoreDelta) + "," + strconv.Itoa(possibleDelta) + ","
		return true
	}

	// groups: 1 boundary, 2 score, 3 possible
	oldScore, _ := strconv.Atoi(p.Score[loc[4]:loc[5]])
	oldPossible, _ := strconv.Atoi(p.Score[loc[6]:loc[7]])
	replacement := p.Score[loc[2]:loc[3]] + category + "," +
		strconv.Itoa(oldScore+scoreDelta) + "," +
		strconv.Itoa(oldPossible+possibleDelta) + ","
	p.Score = p.Score[:loc[0]] + replacement + p.Score[loc[1]:]
	return true
}

// ParseScoreLedger splits a ledger into its triples. Malformed triples are skipped.
func ParseScoreLedger(ledger string) []CategoryScore {
	fields := strings.Split(ledger, ",")
	var scores []CategoryScore
	for i := 0; i+2 < len(fields); i += 3 {
		name := fields[i]
		score, err1 := strconv.Atoi(fields[i+1])
		possible, err2 := strconv.Atoi(fields[i+2])
		if name == "" || err1 != nil || err2 != nil {
			continue
		}
		scores = append(scores, CategoryScore{
			Category: name,
			Score:    score,
			Possible: possible,
			Percent:  scorePercent(score, possible),
		})
	}
	return scores
}

// CategoryScores lists every known category with its totals. Categories the
// ledger has never seen report zero, ledger entries for unknown categories
// are ignored.
func (p *Progress) CategoryScores(known []string) []CategoryScore {
	byName := make(map[string]CategoryScore)
	for _, cs := range ParseScoreLedger(p.Score) {
		key := strings.ToLower(cs.Category)
		if _, seen := byName[key]; !seen {
			byName[key] = cs
		}
	}

	out := make([]CategoryScore, 0, len(known))
	for _, name := range known {
		cs, ok := byName[strings.ToLower(name)]
		if !ok {
			cs = CategoryScore{}
		}
		cs.Category = name
		out = append(out, cs)
	}
	return out
}

func scorePercent(score, possible int) int {
	if possible <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(score) / float64(possible) * 100))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
