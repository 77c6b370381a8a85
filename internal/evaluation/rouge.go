package evaluation

import (
	"strings"

	"FinNewsAnalyzer/internal/domain"
)

// Pair is one reference/generated text pair to score.
type Pair struct {
	ArticleID string `json:"article_id" yaml:"article_id"`
	Reference string `json:"reference" yaml:"reference"`
	Generated string `json:"generated" yaml:"generated"`
}

// ScoreSummaries computes ROUGE-1, ROUGE-2 and ROUGE-L F1 for every pair.
func ScoreSummaries(pairs []Pair) []domain.SummaryQualityScore {
	scores := make([]domain.SummaryQualityScore, 0, len(pairs))
	for _, p := range pairs {
		scores = append(scores, domain.SummaryQualityScore{
			ArticleID:     p.ArticleID,
			SummaryScores: ScorePair(p.Reference, p.Generated),
		})
	}
	return scores
}

// ScorePair scores a single generated text against its reference.
func ScorePair(reference, generated string) domain.SummaryScores {
	if strings.TrimSpace(generated) == "" {
		return domain.SummaryScores{}
	}

	ref := Tokenize(reference)
	gen := Tokenize(generated)

	return domain.SummaryScores{
		Rouge1F1: rougeN(ref, gen, 1),
		Rouge2F1: rougeN(ref, gen, 2),
		RougeLF1: rougeL(ref, gen),
	}
}

func rougeN(ref, gen []string, n int) float64 {
	refGrams := ngrams(ref, n)
	genGrams := ngrams(gen, n)

	var overlap, refTotal, genTotal int
	for _, c := range refGrams {
		refTotal += c
	}
	for gram, c := range genGrams {
		genTotal += c
		overlap += min(c, refGrams[gram])
	}

	return fmeasure(ratio(overlap, genTotal), ratio(overlap, refTotal))
}

func rougeL(ref, gen []string) float64 {
	if len(ref) == 0 || len(gen) == 0 {
		return 0
	}
	lcs := lcsLength(ref, gen)
	return fmeasure(ratio(lcs, len(gen)), ratio(lcs, len(ref)))
}

func ngrams(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return counts
}

// lcsLength keeps two rows of the dynamic programming table.
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func fmeasure(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
