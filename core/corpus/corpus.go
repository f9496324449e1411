package corpus

import (
	"bufio"
	"io"

	"github.com/juju/errors"
)

// Corpus is an ordered collection of documents.  A document's
// position in the slice is its document id, which authorship maps
// refer to.
type Corpus []*Document

// Load reads a corpus in text bag-of-words format: one document per
// line, each line whitespace-separated id:count pairs.  Blank lines
// become empty documents so that line numbers and document ids stay
// aligned.
func Load(r io.Reader) (Corpus, error) {
	c := make(Corpus, 0)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for s.Scan() {
		d, e := ParseDocument(s.Text())
		if e != nil {
			return nil, errors.Annotatef(e, "document %d", len(c))
		}
		c = append(c, d)
	}
	if e := s.Err(); e != nil {
		return nil, errors.Trace(e)
	}
	return c, nil
}

// NumTerms returns 1 plus the largest term id in the corpus, or 0
// for an empty corpus.
func (c Corpus) NumTerms() int {
	max := int32(-1)
	for _, d := range c {
		for _, w := range d.Words {
			if w > max {
				max = w
			}
		}
	}
	return int(max) + 1
}

// NumTokens returns the total token count over all documents.
func (c Corpus) NumTokens() float64 {
	n := 0.0
	for _, d := range c {
		n += d.NumTokens()
	}
	return n
}
