package atvb

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/latentlab/quill/core/corpus"
)

// DocResult holds the local variational parameters fitted to one
// document, ready to be folded into the model with Blend.
type DocResult struct {
	Authors []int32 // the document's authors, ascending
	Words   []int32 // the document's word ids, ascending

	TildeGamma  *mat.Dense // len(Authors) x topics
	TildeLambda *mat.Dense // topics x len(Words); nil for an empty document

	Iterations int  // fixed-point iterations performed
	Converged  bool // whether the parameters stopped moving before the iteration cap
}

// Solver fits per-document variational parameters by coordinate
// ascent against the model's current global expectations.
//
// For a document with words v (counts c_v) and authors A_d, the
// solver alternates, up to Iterations times or until both local
// parameter matrices move less than Threshold on average:
//
//	phi[v,k]   ~ exp( sum_a mu[v,a] Elogtheta[a,k] ) * exp(Elogbeta[k,v])
//	mu[v,a]    ~ exp( sum_k phi[v,k] Elogtheta[a,k] )
//	tgamma[a,k] = alpha + |D_a| * sum_v c_v mu[v,a] phi[v,k]
//	tlambda[k,v] = eta + D * c_v phi[v,k]
//
// where phi rows are normalized over topics, mu rows over the
// document's authors, |D_a| is the number of documents by author a,
// and D the corpus size.  tgamma and tlambda are recomputed from
// scratch every iteration, so only mu and phi carry state across
// iterations.
//
// A Solver reads the model's expectations and authorship but never
// writes the model; the caller decides when to Blend.
type Solver struct {
	model *Model
}

func NewSolver(m *Model) *Solver {
	return &Solver{model: m}
}

// Fit runs the local fixed point for one document.  authors must be
// the document's author set, numDocs the size of the corpus being
// swept.  The model must have an authorship bound, since the gamma
// update scales by each author's document count.
func (s *Solver) Fit(doc *corpus.Document, authors []int32, numDocs int) *DocResult {
	m := s.model
	numTopics := m.NumTopics()
	numWords := len(doc.Words)
	numAuthors := len(authors)

	r := &DocResult{Authors: authors, Words: doc.Words}
	if numWords == 0 {
		// No words to explain; the local optimum of every author row
		// is the prior, and the step still nudges gamma toward it.
		r.TildeGamma = mat.NewDense(numAuthors, numTopics, nil)
		fillMatrix(r.TildeGamma, m.Alpha)
		r.Converged = true
		return r
	}

	phi := newGrid(numWords, numTopics)
	mu := newGrid(numWords, numAuthors)
	for _, row := range mu {
		for a := range row {
			row[a] = 1.0 / float64(numAuthors)
		}
	}

	tildeGamma := mat.NewDense(numAuthors, numTopics, nil)
	tildeLambda := mat.NewDense(numTopics, numWords, nil)
	lastGamma := mat.NewDense(numAuthors, numTopics, nil)
	lastLambda := mat.NewDense(numTopics, numWords, nil)

	for iter := 0; iter < m.cfg.Iterations; iter++ {
		lastGamma.Copy(tildeGamma)
		lastLambda.Copy(tildeLambda)

		for vi, w := range doc.Words {
			p := phi[vi]
			for k := range p {
				p[k] = 0
			}
			for ai, a := range authors {
				muVA := mu[vi][ai]
				th := m.Elogtheta.RawRowView(int(a))
				for k, t := range th {
					p[k] += muVA * t
				}
			}
			sum := 0.0
			for k := range p {
				p[k] = math.Exp(p[k]) * m.ExpElogbeta.At(k, int(w))
				sum += p[k]
			}
			for k := range p {
				p[k] /= sum
			}
		}

		for vi := range doc.Words {
			p := phi[vi]
			row := mu[vi]
			sum := 0.0
			for ai, a := range authors {
				th := m.Elogtheta.RawRowView(int(a))
				avg := 0.0
				for k, t := range th {
					avg += p[k] * t
				}
				row[ai] = math.Exp(avg)
				sum += row[ai]
			}
			for ai := range row {
				row[ai] /= sum
			}
		}

		for ai, a := range authors {
			tg := tildeGamma.RawRowView(ai)
			for k := range tg {
				tg[k] = 0
			}
			for vi := range doc.Words {
				cm := doc.Counts[vi] * mu[vi][ai]
				p := phi[vi]
				for k := range tg {
					tg[k] += cm * p[k]
				}
			}
			scale := float64(m.authorship.DocCount(a))
			for k := range tg {
				tg[k] = m.Alpha + scale*tg[k]
			}
		}

		for k := 0; k < numTopics; k++ {
			tl := tildeLambda.RawRowView(k)
			for vi := range doc.Words {
				tl[vi] = m.Eta + float64(numDocs)*doc.Counts[vi]*phi[vi][k]
			}
		}

		r.Iterations = iter + 1
		if iter > 0 &&
			meanAbsDiff(tildeGamma, lastGamma) < m.cfg.Threshold &&
			meanAbsDiff(tildeLambda, lastLambda) < m.cfg.Threshold {
			r.Converged = true
			break
		}
	}

	r.TildeGamma = tildeGamma
	r.TildeLambda = tildeLambda
	return r
}

func newGrid(rows, cols int) [][]float64 {
	flat := make([]float64, rows*cols)
	g := make([][]float64, rows)
	for i := range g {
		g[i] = flat[i*cols : (i+1)*cols]
	}
	return g
}

func fillMatrix(m *mat.Dense, x float64) {
	data := m.RawMatrix().Data
	for i := range data {
		data[i] = x
	}
}
