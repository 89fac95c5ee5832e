// Package softskill derives a soft-skill score in [0,1] from free-text
// client reviews. The default strategy is lexicon-based and never fails;
// a heavier model-backed strategy can be selected by configuration and
// automatically falls back to the lexicon when unavailable.
package softskill

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jusmatch/matchengine/internal/domain"
	"github.com/jusmatch/matchengine/internal/numeric"
	"github.com/jusmatch/matchengine/internal/ports"
)

var _ ports.SoftSkillAnalyzer = (*LexiconAnalyzer)(nil)

const (
	// NeutralScore is returned when no usable review exists.
	NeutralScore = 0.5

	// minReviewChars discards trivially short snippets ("ok", "top").
	minReviewChars = 12

	// minDistinctTokens discards reviews without enough token variety to
	// carry sentiment ("muito muito muito").
	minDistinctTokens = 3

	// recencyHalfLifeDays halves a review's weight every half-life.
	recencyHalfLifeDays = 180.0

	// fuzzyMinTokenLen is the shortest token eligible for fuzzy lexicon
	// matching; shorter tokens must match exactly.
	fuzzyMinTokenLen = 5
)

// foldCaser is a package-level Unicode case folder for performance.
var foldCaser = cases.Fold()

// stripMarks removes combining marks after NFD decomposition, turning
// "ótimo" into "otimo" so the lexicon stays accent-free.
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// emojiWords substitutes common review emoji with lexicon words before
// tokenization.
var emojiWords = strings.NewReplacer(
	"👍", " otimo ",
	"👎", " pessimo ",
	"😊", " bom ",
	"🙂", " bom ",
	"😡", " ruim ",
	"😠", " ruim ",
	"❤️", " excelente ",
	"⭐", " estrela ",
)

// positiveLexicon and negativeLexicon are the accent-free keyword sets
// matched against normalized review tokens.
var (
	positiveLexicon = []string{
		"otimo", "excelente", "atencioso", "prestativo", "dedicado",
		"eficiente", "rapido", "agil", "claro", "profissional",
		"recomendo", "competente", "cordial", "confiavel",
		"transparente", "educado", "gentil", "impecavel",
	}
	negativeLexicon = []string{
		"ruim", "pessimo", "lento", "demorado", "desatento",
		"confuso", "grosseiro", "negligente", "insatisfeito",
		"horrivel", "desorganizado", "arrogante", "despreparado",
		"caro", "enrolado",
	}
)

// LexiconAnalyzer scores reviews by matching normalized tokens against
// positive and negative keyword sets, weighting each review by recency.
// It is stateless, thread-safe, and never returns an error.
type LexiconAnalyzer struct {
	// now is injectable for deterministic recency tests.
	now func() time.Time
}

// NewLexiconAnalyzer creates the default lexicon-based analyzer.
func NewLexiconAnalyzer() *LexiconAnalyzer {
	return &LexiconAnalyzer{now: time.Now}
}

// Score implements ports.SoftSkillAnalyzer. Reviews shorter than the
// minimum length or without enough token variety are discarded; the rest
// are scored by lexicon hits and combined with exponential recency decay.
// Returns NeutralScore when nothing usable remains.
func (a *LexiconAnalyzer) Score(_ context.Context, reviews []domain.Review) (float64, error) {
	now := a.now()

	var weighted, total float64
	for _, rev := range reviews {
		tokens, ok := usableTokens(rev.Text)
		if !ok {
			continue
		}

		w := recencyWeight(now, rev.CreatedAt)
		weighted += w * sentiment(tokens)
		total += w
	}

	if total == 0 {
		return NeutralScore, nil
	}
	return numeric.Clamp01(weighted / total), nil
}

// Normalize lowercases, strips diacritics, and substitutes emoji so the
// text matches the accent-free lexicon. Exported for reuse in tests and
// by callers that pre-process review batches.
func Normalize(text string) string {
	text = emojiWords.Replace(text)
	text = foldCaser.String(text)
	if stripped, _, err := transform.String(stripMarks, text); err == nil {
		text = stripped
	}
	return text
}

// usableTokens normalizes and tokenizes a review, reporting whether it
// passes the minimum-length and token-variety gates.
func usableTokens(text string) ([]string, bool) {
	normalized := Normalize(strings.TrimSpace(text))
	if len(normalized) < minReviewChars {
		return nil, false
	}

	tokens := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	distinct := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		distinct[tok] = struct{}{}
	}
	if len(distinct) < minDistinctTokens {
		return nil, false
	}
	return tokens, true
}

// sentiment maps lexicon hit counts to [0,1], with 0.5 for a review that
// matched nothing.
func sentiment(tokens []string) float64 {
	var pos, neg int
	for _, tok := range tokens {
		if matchesLexicon(tok, positiveLexicon) {
			pos++
			continue
		}
		if matchesLexicon(tok, negativeLexicon) {
			neg++
		}
	}
	if pos+neg == 0 {
		return NeutralScore
	}
	return 0.5 + 0.5*float64(pos-neg)/float64(pos+neg)
}

// matchesLexicon reports whether the token matches any keyword exactly,
// or within one edit for tokens long enough to make typos distinguishable
// from distinct words.
func matchesLexicon(token string, lexicon []string) bool {
	for _, kw := range lexicon {
		if token == kw {
			return true
		}
		if len(token) >= fuzzyMinTokenLen && len(kw) >= fuzzyMinTokenLen &&
			levenshtein.ComputeDistance(token, kw) <= 1 {
			return true
		}
	}
	return false
}

// recencyWeight applies exponential decay by review age. Reviews without
// a timestamp are treated as current.
func recencyWeight(now, createdAt time.Time) float64 {
	if createdAt.IsZero() || createdAt.After(now) {
		return 1
	}
	ageDays := now.Sub(createdAt).Hours() / 24
	return math.Exp(-math.Ln2 * ageDays / recencyHalfLifeDays)
}
