package usecase

import (
	"regexp"
	"strings"

	"github.com/dietledger/backend/internal/domain"
)

var (
	punctuationRegex    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
	sizePatternRegex    = regexp.MustCompile(
		`(?i)\b\d+\.?\d*\s*(?:fl\s*oz|oz|ml|liters?|l|lbs?|pounds?|kg|grams?|g|ct|count|pk|pack)\b`,
	)
)

// stopWords carry no signal when comparing a query with USDA descriptions.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "with": true,
	"in": true, "or": true, "for": true, "to": true, "by": true, "from": true,
	"ns": true, "nfs": true, "as": true, "prepared": true,
	"includes": true, "usda": true, "commodity": true,
}

// dataTypeBonus prefers curated datasets over branded labels.
var dataTypeBonus = map[string]float64{
	"Foundation":     8,
	"SR Legacy":      6,
	"Survey (FNDDS)": 4,
	"Branded":        0,
}

const (
	substringMatchBonus = 10.0
	fuzzyWeight         = 0.8
	fuzzyEditDistance   = 1
)

// FoodMatch is a scored USDA search candidate.
type FoodMatch struct {
	Food          domain.USDAFood
	Score         float64
	MatchedTokens []string
}

// rankFoods scores every candidate against query and returns the best one.
// ok is false when no candidate shares a single token with the query.
func rankFoods(query string, foods []domain.USDAFood) (FoodMatch, bool) {
	queryTokens := tokenize(cleanQuery(query))
	best := FoodMatch{Score: -1}
	for _, f := range foods {
		score, matched := matchScore(query, queryTokens, f)
		if score > best.Score {
			best = FoodMatch{Food: f, Score: score, MatchedTokens: matched}
		}
	}
	return best, len(best.MatchedTokens) > 0
}

// matchScore combines query coverage (60%), description coverage (20%) and
// Jaccard overlap (20%) on a 0-100 scale, then adds bonuses.
func matchScore(query string, queryTokens []string, f domain.USDAFood) (float64, []string) {
	descTokens := tokenize(f.Description)
	if len(queryTokens) == 0 || len(descTokens) == 0 {
		return 0, nil
	}

	descSet := make(map[string]bool, len(descTokens))
	for _, t := range descTokens {
		descSet[t] = true
	}

	var hits float64
	var matched []string
	for _, qt := range queryTokens {
		if descSet[qt] {
			hits++
			matched = append(matched, qt)
			continue
		}
		for dt := range descSet {
			if fuzzyTokenMatch(qt, dt) {
				hits += fuzzyWeight
				matched = append(matched, qt)
				break
			}
		}
	}

	queryCoverage := hits / float64(len(queryTokens))
	descCoverage := hits / float64(len(descSet))
	if descCoverage > 1 {
		descCoverage = 1
	}
	union := float64(len(descSet)+len(queryTokens)) - hits
	jaccard := hits / union

	score := (queryCoverage*0.6 + descCoverage*0.2 + jaccard*0.2) * 100
	score += dataTypeBonus[f.DataType]

	q := strings.ToLower(cleanQuery(query))
	if len(q) > 3 && strings.Contains(strings.ToLower(f.Description), q) {
		score += substringMatchBonus
	}
	if score > 100 {
		score = 100
	}
	return score, matched
}

// cleanQuery strips size patterns and collapses whitespace.
func cleanQuery(s string) string {
	s = sizePatternRegex.ReplaceAllString(s, " ")
	s = multipleSpacesRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// tokenize lowercases, drops punctuation, stop words, single characters
// and pure numbers.
func tokenize(s string) []string {
	words := strings.Fields(punctuationRegex.ReplaceAllString(strings.ToLower(s), " "))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) <= 1 || stopWords[w] || isNumeric(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

// fuzzyTokenMatch accepts one edit between tokens of four or more runes.
func fuzzyTokenMatch(a, b string) bool {
	if a == b {
		return true
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 4 || len(rb) < 4 {
		return false
	}
	diff := len(ra) - len(rb)
	if diff < 0 {
		diff = -diff
	}
	if diff > fuzzyEditDistance {
		return false
	}
	return levenshteinDistance(ra, rb) <= fuzzyEditDistance
}

func levenshteinDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
