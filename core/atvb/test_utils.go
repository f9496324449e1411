package atvb

import (
	"fmt"
	"strings"

	"github.com/latentlab/quill/core/corpus"
)

const (
	testingNumTopics = 2
	testingNumTerms  = 4
	testingSeed      = 42
)

func createTestingConfig() *Config {
	c := DefaultConfig()
	c.NumTopics = testingNumTopics
	c.NumTerms = testingNumTerms
	c.Seed = testingSeed
	return &c
}

// createTestingModel builds a model over the testing corpus: three
// documents on four terms, written by alice and bob.
func createTestingModel() (*Model, error) {
	c, e := corpus.CreateTestingCorpus()
	if e != nil {
		return nil, e
	}
	auth, e := corpus.CreateTestingAuthorship()
	if e != nil {
		return nil, e
	}
	return NewModel(createTestingConfig(), c, auth)
}

// createUniformModel builds a model whose Gamma rows all equal alpha
// and Lambda rows all equal eta, over a corpus of a single one-word
// document by a single author.  At this point both KL terms of the
// variational bound vanish, which makes bound values computable by
// hand.
func createUniformModel() (*Model, error) {
	c, e := corpus.Load(strings.NewReader("0:1\n"))
	if e != nil {
		return nil, e
	}
	auth, e := corpus.NewAuthorship([]string{"solo"}, [][]int32{{0}}, nil, 1)
	if e != nil {
		return nil, e
	}

	cfg := DefaultConfig()
	cfg.NumTopics = 2
	cfg.NumTerms = 2
	cfg.Seed = testingSeed
	m, e := NewModel(&cfg, c, auth)
	if e != nil {
		return nil, e
	}
	if m.Alpha != 0.5 || m.Eta != 0.5 {
		return nil, fmt.Errorf("unexpected derived priors alpha=%v eta=%v", m.Alpha, m.Eta)
	}

	fillMatrix(m.Gamma, m.Alpha)
	fillMatrix(m.Lambda, m.Eta)
	m.updateExpectations()
	return m, nil
}
