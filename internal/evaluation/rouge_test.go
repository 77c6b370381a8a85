package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Stocks JUMPED, the Fed's rate-cut!")

	assert.Equal(t, []string{"stock", "jump", "the", "fed", "s", "rate", "cut"}, tokens)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(" ... !!! "))
}

func TestScorePairIdentical(t *testing.T) {
	texts := []string{
		"The central bank raised interest rates by 25 basis points.",
		"Shares of Acme fell sharply after weak quarterly earnings guidance.",
		"Oil prices rose",
	}

	for _, text := range texts {
		s := ScorePair(text, text)
		assert.InDelta(t, 1.0, s.Rouge1F1, 1e-12, text)
		assert.InDelta(t, 1.0, s.Rouge2F1, 1e-12, text)
		assert.InDelta(t, 1.0, s.RougeLF1, 1e-12, text)
	}
}

func TestScorePairIdenticalSingleToken(t *testing.T) {
	s := ScorePair("Rally", "Rally")

	assert.InDelta(t, 1.0, s.Rouge1F1, 1e-12)
	assert.Zero(t, s.Rouge2F1, "a single token has no bigrams")
	assert.InDelta(t, 1.0, s.RougeLF1, 1e-12)
}

func TestScorePairEmptyGenerated(t *testing.T) {
	for _, gen := range []string{"", "   ", "\n\t"} {
		s := ScorePair("The market closed higher on Friday.", gen)
		assert.Zero(t, s.Rouge1F1)
		assert.Zero(t, s.Rouge2F1)
		assert.Zero(t, s.RougeLF1)
	}
}

func TestScorePairDisjoint(t *testing.T) {
	s := ScorePair("alpha beta gamma", "delta epsilon zeta")

	assert.Zero(t, s.Rouge1F1)
	assert.Zero(t, s.Rouge2F1)
	assert.Zero(t, s.RougeLF1)
}

func TestScorePairKnownValues(t *testing.T) {
	// reference tokens: the cat sat on the mat (6)
	// generated tokens: the cat on the mat (5)
	s := ScorePair("the cat sat on the mat", "the cat on the mat")

	// unigram overlap 5 -> P=1, R=5/6
	assert.InDelta(t, 2*(5.0/6)/(1+5.0/6), s.Rouge1F1, 1e-9)
	// bigrams ref: the-cat cat-sat sat-on on-the the-mat; gen: the-cat cat-on on-the the-mat
	// overlap 3 -> P=3/4, R=3/5
	p, r := 3.0/4, 3.0/5
	assert.InDelta(t, 2*p*r/(p+r), s.Rouge2F1, 1e-9)
	// LCS 5 -> same as unigram here
	assert.InDelta(t, s.Rouge1F1, s.RougeLF1, 1e-9)
}

func TestScorePairStemming(t *testing.T) {
	s := ScorePair("markets rallied", "market rallies")

	assert.InDelta(t, 1.0, s.Rouge1F1, 1e-12)
}

func TestScorePairClipsRepeatedNgrams(t *testing.T) {
	s := ScorePair("profit", "profit profit profit profit")

	// clipped overlap 1 -> P=1/4, R=1
	assert.InDelta(t, 2*0.25/1.25, s.Rouge1F1, 1e-9)
}

func TestScoreSummariesDeterministic(t *testing.T) {
	pairs := []Pair{
		{ArticleID: "a1", Reference: "Inflation eased in March as energy prices fell.", Generated: "Energy prices fell and inflation eased."},
		{ArticleID: "a2", Reference: "The merger was approved by regulators.", Generated: ""},
	}

	first := ScoreSummaries(pairs)
	second := ScoreSummaries(pairs)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "a1", first[0].ArticleID)
	assert.Greater(t, first[0].Rouge1F1, 0.0)
	assert.Zero(t, first[1].Rouge1F1)
}

func TestScoresWithinUnitInterval(t *testing.T) {
	s := ScorePair("rates rates rates fell", "rates fell fell fell fell")

	for _, v := range []float64{s.Rouge1F1, s.Rouge2F1, s.RougeLF1} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
