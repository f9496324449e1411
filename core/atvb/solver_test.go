package atvb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latentlab/quill/core/corpus"
)

// newOnesModel builds a model over the given corpus and authorship
// and overwrites its parameters with all ones, so Elogtheta and
// Elogbeta entries become digamma(1)-digamma(n), which have closed
// forms.
func newOnesModel(t *testing.T, text string, auth *corpus.Authorship, numTerms int) (*Model, corpus.Corpus) {
	c, e := corpus.Load(strings.NewReader(text))
	assert.NoError(t, e)

	cfg := DefaultConfig()
	cfg.NumTopics = 2
	cfg.NumTerms = numTerms
	cfg.Seed = testingSeed
	m, e := NewModel(&cfg, c, auth)
	assert.NoError(t, e)

	fillMatrix(m.Gamma, 1)
	fillMatrix(m.Lambda, 1)
	m.updateExpectations()
	return m, c
}

// One author, one document "0:2", all-ones parameters.  Every phi and
// mu row normalizes to the uniform distribution, so the fixed point is
// reached after the first iteration and detected on the second:
//
//	tgamma[0,k]  = 1/2 + 1 * (2 * 1 * 1/2)   = 3/2
//	tlambda[k,0] = 1/2 + 1 * 2 * 1/2         = 3/2
func TestFitSingleAuthor(t *testing.T) {
	auth, e := corpus.NewAuthorship([]string{"solo"}, [][]int32{{0}}, nil, 1)
	assert.NoError(t, e)
	m, c := newOnesModel(t, "0:2\n", auth, 2)

	r := NewSolver(m).Fit(c[0], auth.DocAuthors[0], 1)

	assert.True(t, r.Converged)
	assert.Equal(t, 2, r.Iterations)
	assert.Equal(t, []int32{0}, r.Authors)
	assert.Equal(t, []int32{0}, r.Words)

	for k := 0; k < 2; k++ {
		assert.InDelta(t, 1.5, r.TildeGamma.At(0, k), 1e-12)
		assert.InDelta(t, 1.5, r.TildeLambda.At(k, 0), 1e-12)
	}
}

// Two authors of one document split the responsibility for its single
// word evenly, halving each author's sufficient statistics:
//
//	tgamma[a,k]  = 1/2 + 1 * (1 * 1/2 * 1/2) = 3/4
//	tlambda[k,0] = 1/2 + 1 * 1 * 1/2         = 1
func TestFitSharedDocument(t *testing.T) {
	auth, e := corpus.NewAuthorship([]string{"ann", "ben"}, nil, [][]int32{{0, 1}}, 1)
	assert.NoError(t, e)
	m, c := newOnesModel(t, "0:1\n", auth, 2)

	r := NewSolver(m).Fit(c[0], auth.DocAuthors[0], 1)

	assert.True(t, r.Converged)
	for a := 0; a < 2; a++ {
		for k := 0; k < 2; k++ {
			assert.InDelta(t, 0.75, r.TildeGamma.At(a, k), 1e-12)
		}
	}
	for k := 0; k < 2; k++ {
		assert.InDelta(t, 1.0, r.TildeLambda.At(k, 0), 1e-12)
	}
}

// An author with several documents scales the statistics of each by
// the document count, here 3:
//
//	tgamma[0,k] = 1/2 + 3 * (2 * 1 * 1/2) = 7/2
func TestFitScalesByAuthorDocumentCount(t *testing.T) {
	auth, e := corpus.NewAuthorship(nil, [][]int32{{0, 1, 2}}, nil, 3)
	assert.NoError(t, e)
	m, c := newOnesModel(t, "0:2\n1:1\n0:1 1:1\n", auth, 2)

	r := NewSolver(m).Fit(c[0], auth.DocAuthors[0], 3)

	for k := 0; k < 2; k++ {
		assert.InDelta(t, 3.5, r.TildeGamma.At(0, k), 1e-12)
		// tlambda also scales by the corpus size: 1/2 + 3*2*1/2 = 7/2.
		assert.InDelta(t, 3.5, r.TildeLambda.At(k, 0), 1e-12)
	}
}

func TestFitEmptyDocument(t *testing.T) {
	m, e := createTestingModel()
	assert.NoError(t, e)

	r := NewSolver(m).Fit(&corpus.Document{}, []int32{0}, 3)

	assert.True(t, r.Converged)
	assert.Equal(t, 0, r.Iterations)
	assert.Nil(t, r.TildeLambda)
	for k := 0; k < testingNumTopics; k++ {
		assert.Equal(t, m.Alpha, r.TildeGamma.At(0, k))
	}
}

func TestFitIterationCap(t *testing.T) {
	m, e := createTestingModel()
	assert.NoError(t, e)

	// A single iteration can never observe convergence.
	m.cfg.Iterations = 1
	r := NewSolver(m).Fit(m.corpus[0], m.authorship.DocAuthors[0], 3)
	assert.False(t, r.Converged)
	assert.Equal(t, 1, r.Iterations)

	// A huge threshold accepts the first measurable change.
	m.cfg.Iterations = 10
	m.cfg.Threshold = 1e9
	r = NewSolver(m).Fit(m.corpus[0], m.authorship.DocAuthors[0], 3)
	assert.True(t, r.Converged)
	assert.Equal(t, 2, r.Iterations)
}

func TestFitStatisticsDominatePrior(t *testing.T) {
	m, e := createTestingModel()
	assert.NoError(t, e)

	r := NewSolver(m).Fit(m.corpus[0], m.authorship.DocAuthors[0], 3)

	rows, _ := r.TildeGamma.Dims()
	assert.Equal(t, 1, rows) // document 0 has a single author
	for k := 0; k < testingNumTopics; k++ {
		assert.GreaterOrEqual(t, r.TildeGamma.At(0, k), m.Alpha)
		for vi := range r.Words {
			assert.GreaterOrEqual(t, r.TildeLambda.At(k, vi), m.Eta)
		}
	}
}
