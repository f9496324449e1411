package atvb

import (
	"bytes"
	"encoding/gob"
	"sync/atomic"

	"github.com/juju/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/latentlab/quill/core/corpus"
)

// Model is the variational posterior of an author-topic model.  Gamma
// holds one Dirichlet parameter row per author over topics, Lambda one
// row per topic over terms.  The three expectation matrices are
// derived from Gamma and Lambda and refreshed after every update, so
// readers may use them without recomputation.
//
// A model remembers the corpus and authorship it was constructed with;
// Infer without arguments trains on them.  The update step counter t
// advances once per document update and persists across Infer calls,
// so resumed training continues the learning rate schedule instead of
// restarting it.
type Model struct {
	Gamma  *mat.Dense // authors x topics
	Lambda *mat.Dense // topics x terms

	Elogtheta   *mat.Dense // E[log theta], authors x topics
	Elogbeta    *mat.Dense // E[log beta], topics x terms
	ExpElogbeta *mat.Dense // exp E[log beta], topics x terms

	Alpha float64 // resolved symmetric prior over topics
	Eta   float64 // resolved symmetric prior over terms

	cfg        Config
	corpus     corpus.Corpus
	authorship *corpus.Authorship
	t          int

	interrupted atomic.Bool

	// OnPass, when non-nil, is called after every training pass with
	// that pass's statistics.  Commands use it to export progress.
	OnPass func(PassStats)
}

// NewModel validates cfg against the corpus and authorship, resolves
// derived hyperparameters, and samples the initial Gamma and Lambda
// from Gamma(100, 1/100) using cfg.Seed.  Gamma is sampled before
// Lambda, so equal seeds give bit-identical models.
func NewModel(cfg *Config, c corpus.Corpus, auth *corpus.Authorship) (*Model, error) {
	if e := cfg.Validate(); e != nil {
		return nil, errors.Trace(e)
	}
	if len(c) == 0 {
		return nil, errors.Errorf("cannot build a model from an empty corpus")
	}
	if auth == nil {
		return nil, errors.Errorf("cannot build a model without authorship")
	}
	if auth.NumDocs() != len(c) {
		return nil, errors.Errorf("authorship covers %d documents, corpus has %d",
			auth.NumDocs(), len(c))
	}

	numTerms := cfg.NumTerms
	if numTerms == 0 {
		numTerms = c.NumTerms()
		if numTerms == 0 {
			return nil, errors.Errorf(
				"cannot derive the vocabulary size from a corpus with no words; set NumTerms")
		}
	}
	if e := validateCorpus(c, numTerms); e != nil {
		return nil, errors.Trace(e)
	}

	m := &Model{
		Alpha:      cfg.Alpha,
		Eta:        cfg.Eta,
		cfg:        *cfg,
		corpus:     c,
		authorship: auth,
	}
	m.cfg.NumTerms = numTerms
	if m.Alpha == 0 {
		m.Alpha = 1.0 / float64(cfg.NumTopics)
	}
	if m.Eta == 0 {
		m.Eta = 1.0 / float64(numTerms)
	}

	src := rand.NewSource(cfg.Seed)
	m.Gamma = gammaMatrix(auth.NumAuthors(), cfg.NumTopics, src)
	m.Lambda = gammaMatrix(cfg.NumTopics, numTerms, src)
	m.Elogtheta = mat.NewDense(auth.NumAuthors(), cfg.NumTopics, nil)
	m.Elogbeta = mat.NewDense(cfg.NumTopics, numTerms, nil)
	m.ExpElogbeta = mat.NewDense(cfg.NumTopics, numTerms, nil)
	m.updateExpectations()
	return m, nil
}

func validateCorpus(c corpus.Corpus, numTerms int) error {
	for i, d := range c {
		if len(d.Words) != len(d.Counts) {
			return errors.Errorf("document %d has %d words but %d counts",
				i, len(d.Words), len(d.Counts))
		}
		for j, w := range d.Words {
			if w < 0 || int(w) >= numTerms {
				return errors.Errorf("document %d: word id %d out of range [0, %d)",
					i, w, numTerms)
			}
			if d.Counts[j] <= 0 {
				return errors.Errorf("document %d: word %d has non-positive count %v",
					i, w, d.Counts[j])
			}
		}
	}
	return nil
}

func (m *Model) NumTopics() int {
	_, k := m.Gamma.Dims()
	return k
}

func (m *Model) NumAuthors() int {
	a, _ := m.Gamma.Dims()
	return a
}

func (m *Model) NumTerms() int {
	_, v := m.Lambda.Dims()
	return v
}

// T is the number of document updates applied so far.
func (m *Model) T() int { return m.t }

func (m *Model) Config() Config { return m.cfg }

// Authorship is the author-document mapping the model was built with,
// or nil for a model restored from disk.
func (m *Model) Authorship() *corpus.Authorship { return m.authorship }

func (m *Model) updateExpectations() {
	dirichletExpectation(m.Elogtheta, m.Gamma)
	dirichletExpectation(m.Elogbeta, m.Lambda)
	expMatrix(m.ExpElogbeta, m.Elogbeta)
}

// Blend folds a fitted document into the global parameters with step
// size rho.  Only the rows of Gamma belonging to the document's
// authors and the columns of Lambda belonging to its words move; all
// other entries keep their value, so documents never disturb the
// topics of unrelated authors.  Expectations are refreshed before
// returning.
func (m *Model) Blend(rho float64, r *DocResult) {
	for i, a := range r.Authors {
		row := m.Gamma.RawRowView(int(a))
		tilde := r.TildeGamma.RawRowView(i)
		for k := range row {
			row[k] = (1-rho)*row[k] + rho*tilde[k]
		}
	}
	if r.TildeLambda != nil {
		k, _ := m.Lambda.Dims()
		for j, w := range r.Words {
			v := int(w)
			for i := 0; i < k; i++ {
				m.Lambda.Set(i, v, (1-rho)*m.Lambda.At(i, v)+rho*r.TildeLambda.At(i, j))
			}
		}
	}
	m.updateExpectations()
}

// BindAuthorship attaches an authorship to a model restored from
// disk, so queries print author names.  The authorship must describe
// exactly the authors the model was trained with, one per Gamma row.
func (m *Model) BindAuthorship(auth *corpus.Authorship) error {
	if auth == nil {
		return errors.Errorf("cannot bind a nil authorship")
	}
	if auth.NumAuthors() != m.NumAuthors() {
		return errors.Errorf("model has %d authors, authorship has %d",
			m.NumAuthors(), auth.NumAuthors())
	}
	m.authorship = auth
	return nil
}

// Bind attaches a corpus and its authorship to a model restored from
// disk, after which it can resume training and evaluate bounds.
func (m *Model) Bind(c corpus.Corpus, auth *corpus.Authorship) error {
	if auth == nil {
		return errors.Errorf("cannot bind a nil authorship")
	}
	if auth.NumAuthors() != m.NumAuthors() {
		return errors.Errorf("model has %d authors, authorship has %d",
			m.NumAuthors(), auth.NumAuthors())
	}
	if auth.NumDocs() != len(c) {
		return errors.Errorf("authorship covers %d documents, corpus has %d",
			auth.NumDocs(), len(c))
	}
	if e := validateCorpus(c, m.NumTerms()); e != nil {
		return errors.Trace(e)
	}
	m.corpus = c
	m.authorship = auth
	return nil
}

// modelState is the gob image of a Model.  Matrices travel as their
// raw row-major data; expectations are recomputed on decode.
type modelState struct {
	NumTopics  int
	NumTerms   int
	NumAuthors int
	Alpha, Eta float64
	T          int
	Cfg        Config
	Gamma      []float64
	Lambda     []float64
}

func (m *Model) GobEncode() ([]byte, error) {
	s := modelState{
		NumTopics:  m.NumTopics(),
		NumTerms:   m.NumTerms(),
		NumAuthors: m.NumAuthors(),
		Alpha:      m.Alpha,
		Eta:        m.Eta,
		T:          m.t,
		Cfg:        m.cfg,
		Gamma:      m.Gamma.RawMatrix().Data,
		Lambda:     m.Lambda.RawMatrix().Data,
	}
	var buf bytes.Buffer
	if e := gob.NewEncoder(&buf).Encode(s); e != nil {
		return nil, errors.Trace(e)
	}
	return buf.Bytes(), nil
}

// GobDecode restores a saved model.  The corpus and authorship are
// not part of the image; a restored model answers queries right away
// and needs Bind before it can resume training or evaluate.
func (m *Model) GobDecode(b []byte) error {
	var s modelState
	if e := gob.NewDecoder(bytes.NewReader(b)).Decode(&s); e != nil {
		return errors.Trace(e)
	}
	m.Gamma = mat.NewDense(s.NumAuthors, s.NumTopics, s.Gamma)
	m.Lambda = mat.NewDense(s.NumTopics, s.NumTerms, s.Lambda)
	m.Elogtheta = mat.NewDense(s.NumAuthors, s.NumTopics, nil)
	m.Elogbeta = mat.NewDense(s.NumTopics, s.NumTerms, nil)
	m.ExpElogbeta = mat.NewDense(s.NumTopics, s.NumTerms, nil)
	m.Alpha = s.Alpha
	m.Eta = s.Eta
	m.t = s.T
	m.cfg = s.Cfg
	m.updateExpectations()
	return nil
}
