package corpus

import (
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Document is a bag of words: parallel slices of distinct term ids
// and their counts.  Term ids index columns of the topic-term matrix
// and must be dense in [0, numTerms).
type Document struct {
	Words  []int32
	Counts []float64
}

func (d *Document) Len() int {
	return len(d.Words)
}

// NumTokens returns the total token count of the document.
func (d *Document) NumTokens() float64 {
	n := 0.0
	for _, c := range d.Counts {
		n += c
	}
	return n
}

// ParseDocument parses one corpus line of whitespace-separated
// id:count pairs, e.g. "0:3 7:1 2:2".  Words are sorted by id and
// duplicated ids have their counts merged.
func ParseDocument(line string) (*Document, error) {
	fs := strings.Fields(line)
	cnt := make(map[int32]float64, len(fs))
	for _, f := range fs {
		i := strings.IndexByte(f, ':')
		if i <= 0 || i == len(f)-1 {
			return nil, errors.Errorf("malformed id:count pair %q", f)
		}
		id, e := strconv.ParseInt(f[:i], 10, 32)
		if e != nil {
			return nil, errors.Annotatef(e, "term id of %q", f)
		}
		if id < 0 {
			return nil, errors.Errorf("negative term id in %q", f)
		}
		c, e := strconv.ParseFloat(f[i+1:], 64)
		if e != nil {
			return nil, errors.Annotatef(e, "count of %q", f)
		}
		if c <= 0 {
			return nil, errors.Errorf("non-positive count in %q", f)
		}
		cnt[int32(id)] += c
	}

	d := &Document{
		Words:  make([]int32, 0, len(cnt)),
		Counts: make([]float64, 0, len(cnt)),
	}
	for id := range cnt {
		d.Words = append(d.Words, id)
	}
	sort.Slice(d.Words, func(i, j int) bool { return d.Words[i] < d.Words[j] })
	for _, id := range d.Words {
		d.Counts = append(d.Counts, cnt[id])
	}
	return d, nil
}
