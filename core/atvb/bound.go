package atvb

import (
	"fmt"
	"math"
	"runtime"

	"github.com/wangkuiyi/parallel"
	"gonum.org/v1/gonum/floats"

	"github.com/latentlab/quill/core/corpus"
)

// Evaluator computes the evidence lower bound of a model on a corpus.
// It only reads the model, so it is safe to evaluate concurrently
// with queries, and its per-document terms are computed in parallel.
type Evaluator struct {
	model  *Model
	corpus corpus.Corpus
}

// NewEvaluator binds a model to the corpus it is scored on.  A nil c
// means the model's training corpus.  The model must have an
// authorship covering c, since the bound depends on each document's
// author set.
func NewEvaluator(m *Model, c corpus.Corpus) *Evaluator {
	if c == nil {
		c = m.corpus
	}
	if m.authorship == nil {
		panic("atvb: evaluating a model without authorship; call Bind after decoding")
	}
	if len(c) > m.authorship.NumDocs() {
		panic(fmt.Sprintf("atvb: corpus has %d documents, authorship covers only %d",
			len(c), m.authorship.NumDocs()))
	}
	return &Evaluator{model: m, corpus: c}
}

// Bound returns the three additive parts of the variational bound and
// their sum:
//
//	word:  sum_d log(1/|A_d|)
//	         + sum_v c_dv log sum_{k, a in A_d} exp(Elogtheta[a,k] + Elogbeta[k,v])
//	theta: sum_a E[log p(theta_a|alpha) - log q(theta_a|gamma_a)]
//	beta:  sum_k E[log p(beta_k|eta) - log q(beta_k|lambda_k)]
//
// The inner word sum runs through floats.LogSumExp, so large
// vocabularies and many topics do not underflow.
func (ev *Evaluator) Bound() (word, theta, beta, total float64) {
	word = ev.wordBound()
	theta = ev.thetaBound()
	beta = ev.betaBound()
	return word, theta, beta, word + theta + beta
}

func (ev *Evaluator) wordBound() float64 {
	m := ev.model
	numTopics := m.NumTopics()
	perDoc := make([]float64, len(ev.corpus))

	parallel.ForN(0, len(ev.corpus), 1, 2*runtime.NumCPU(), func(d int) {
		doc := ev.corpus[d]
		authors := m.authorship.DocAuthors[d]
		buf := make([]float64, numTopics*len(authors))

		bound := math.Log(1.0 / float64(len(authors)))
		for vi, w := range doc.Words {
			i := 0
			for k := 0; k < numTopics; k++ {
				eb := m.Elogbeta.At(k, int(w))
				for _, a := range authors {
					buf[i] = m.Elogtheta.At(int(a), k) + eb
					i++
				}
			}
			bound += doc.Counts[vi] * floats.LogSumExp(buf)
		}
		perDoc[d] = bound
	})
	return floats.Sum(perDoc)
}

func (ev *Evaluator) thetaBound() float64 {
	m := ev.model
	lgAlpha := lgamma(m.Alpha)
	lgPrior := lgamma(float64(m.NumTopics()) * m.Alpha)

	bound := 0.0
	for a := 0; a < m.NumAuthors(); a++ {
		g := m.Gamma.RawRowView(a)
		el := m.Elogtheta.RawRowView(a)
		for k, gk := range g {
			bound += (m.Alpha-gk)*el[k] + lgamma(gk) - lgAlpha
		}
		bound += lgPrior - lgamma(floats.Sum(g))
	}
	return bound
}

func (ev *Evaluator) betaBound() float64 {
	m := ev.model
	lgEta := lgamma(m.Eta)
	lgPrior := lgamma(float64(m.NumTerms()) * m.Eta)

	bound := 0.0
	for k := 0; k < m.NumTopics(); k++ {
		l := m.Lambda.RawRowView(k)
		el := m.Elogbeta.RawRowView(k)
		for v, lv := range l {
			bound += (m.Eta-lv)*el[v] + lgamma(lv) - lgEta
		}
		bound += lgPrior - lgamma(floats.Sum(l))
	}
	return bound
}

// LogWordProb scores the corpus by the point estimates of the
// posterior: gamma and lambda rows normalized into probability
// distributions, each word scored by its probability averaged over
// the document's authors.  Unlike Bound, the result is a genuine
// log-probability of the words, which makes runs with different
// hyperparameters comparable.
func (ev *Evaluator) LogWordProb() float64 {
	m := ev.model
	numTopics := m.NumTopics()

	theta := normalizeRows(m.Gamma.RawMatrix().Data, m.NumAuthors(), numTopics)
	beta := normalizeRows(m.Lambda.RawMatrix().Data, numTopics, m.NumTerms())

	perDoc := make([]float64, len(ev.corpus))
	parallel.ForN(0, len(ev.corpus), 1, 2*runtime.NumCPU(), func(d int) {
		doc := ev.corpus[d]
		authors := m.authorship.DocAuthors[d]

		prob := math.Log(1.0 / float64(len(authors)))
		for vi, w := range doc.Words {
			p := 0.0
			for k := 0; k < numTopics; k++ {
				bkv := beta[k*m.NumTerms()+int(w)]
				for _, a := range authors {
					p += theta[int(a)*numTopics+k] * bkv
				}
			}
			prob += doc.Counts[vi] * math.Log(p)
		}
		perDoc[d] = prob
	})
	return floats.Sum(perDoc)
}

func normalizeRows(data []float64, rows, cols int) []float64 {
	out := make([]float64, len(data))
	for i := 0; i < rows; i++ {
		row := data[i*cols : (i+1)*cols]
		sum := floats.Sum(row)
		for j, x := range row {
			out[i*cols+j] = x / sum
		}
	}
	return out
}

func lgamma(x float64) float64 {
	y, _ := math.Lgamma(x)
	return y
}
