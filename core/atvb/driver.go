package atvb

import (
	"math"
	"time"

	log "github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/latentlab/quill/core/corpus"
)

// PassStats summarizes one training pass over the corpus.
type PassStats struct {
	Pass      int
	Docs      int
	Converged int // documents whose local fit converged
	Duration  time.Duration
	Bound     float64 // evidence lower bound; NaN when evaluation was skipped
}

// learningRate is the step size rho(t) = (offset + t)^-decay of the
// stochastic natural gradient.  Offset >= 1 keeps rho(0) <= 1, and
// decay in (0, 1] makes the series satisfy the Robbins-Monro
// conditions.
func learningRate(offset, decay float64, t int) float64 {
	return math.Pow(offset+float64(t), -decay)
}

func (m *Model) nextRho() float64 {
	rho := learningRate(m.cfg.Offset, m.cfg.Decay, m.t)
	m.t++
	return rho
}

// Interrupt makes a running Infer return after it finishes the
// current document update, leaving the model consistent.  It may be
// called from any goroutine, typically a signal handler.
func (m *Model) Interrupt() { m.interrupted.Store(true) }

// Infer runs online variational inference: Passes sweeps over the
// corpus, each document fitted locally by a Solver and folded into
// the global parameters with the next learning-rate step.  The step
// counter continues from previous Infer calls, so repeated calls
// keep decaying the learning rate rather than restarting it.
//
// A nil c trains on the corpus the model was built with.  An explicit
// c must be covered by the model's authorship; training a prefix of
// the original corpus is allowed, and an empty corpus or Passes == 0
// leaves the parameters untouched.
//
// When EvalEvery > 0, the variational bound is computed before the
// first pass and after every EvalEvery-th pass, and logged.
func (m *Model) Infer(c corpus.Corpus) error {
	if c == nil {
		if m.corpus == nil {
			return errors.Errorf("model has no corpus; call Bind after decoding")
		}
		c = m.corpus
	}
	if m.authorship == nil {
		return errors.Errorf("model has no authorship; call Bind after decoding")
	}
	if len(c) > m.authorship.NumDocs() {
		return errors.Errorf("corpus has %d documents, authorship covers only %d",
			len(c), m.authorship.NumDocs())
	}
	if e := validateCorpus(c, m.NumTerms()); e != nil {
		return errors.Trace(e)
	}

	m.interrupted.Store(false)
	solver := NewSolver(m)

	if m.cfg.EvalEvery > 0 {
		m.logBound(c)
	}

	for pass := 0; pass < m.cfg.Passes; pass++ {
		start := time.Now()
		converged := 0
		for d, doc := range c {
			if m.interrupted.Load() {
				log.Infof("Inference interrupted at pass %d, document %d", pass, d)
				return nil
			}
			r := solver.Fit(doc, m.authorship.DocAuthors[d], len(c))
			if r.Converged {
				converged++
			}
			log.V(2).Infof("Document %d: %d iterations, converged %v",
				d, r.Iterations, r.Converged)
			m.Blend(m.nextRho(), r)
		}

		bound := math.NaN()
		if m.cfg.EvalEvery > 0 && pass%m.cfg.EvalEvery == 0 {
			bound = m.logBound(c)
		}
		duration := time.Since(start)
		log.Infof("Pass %d: %d/%d documents converged in %v",
			pass, converged, len(c), duration)
		if m.OnPass != nil {
			m.OnPass(PassStats{
				Pass:      pass,
				Docs:      len(c),
				Converged: converged,
				Duration:  duration,
				Bound:     bound,
			})
		}
	}
	return nil
}

func (m *Model) logBound(c corpus.Corpus) float64 {
	word, theta, beta, total := NewEvaluator(m, c).Bound()
	log.Infof("Total bound: %.3e. Word bound: %.3e. theta bound: %.3e. beta bound: %.3e.",
		total, word, theta, beta)
	return total
}
