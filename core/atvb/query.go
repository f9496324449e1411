package atvb

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/latentlab/quill/core/corpus"
)

// TermProb is one entry of a topic's term distribution.
type TermProb struct {
	Term int32
	Prob float64
}

// TermDist sorts by probability, most probable first; equal
// probabilities order by term id so results are deterministic.
type TermDist []TermProb

func (d TermDist) Len() int      { return len(d) }
func (d TermDist) Swap(i, j int) { d[i], d[j] = d[j], d[i] }
func (d TermDist) Less(i, j int) bool {
	if d[i].Prob != d[j].Prob {
		return d[i].Prob > d[j].Prob
	}
	return d[i].Term < d[j].Term
}

// TopicProb is one entry of an author's topic distribution.
type TopicProb struct {
	Topic int
	Prob  float64
}

// TopicTerms returns the topn most probable terms of a topic, with
// the topic's lambda row normalized into a distribution.  topic must
// be in [0, NumTopics()).
func (m *Model) TopicTerms(topic, topn int) TermDist {
	if topic < 0 || topic >= m.NumTopics() {
		panic(fmt.Sprintf("topic %d out of range [0, %d)", topic, m.NumTopics()))
	}
	row := m.Lambda.RawRowView(topic)
	sum := floats.Sum(row)

	d := make(TermDist, len(row))
	for v, x := range row {
		d[v] = TermProb{Term: int32(v), Prob: x / sum}
	}
	sort.Sort(d)
	if topn > len(d) {
		topn = len(d)
	}
	if topn < 0 {
		topn = 0
	}
	return d[:topn]
}

// AuthorTopics returns the topics an author writes about with
// probability at least minProbability, in topic order.  A negative
// minProbability means the configured default; the effective cutoff
// never drops below 1e-8, so near-zero noise topics stay out.
func (m *Model) AuthorTopics(author int32, minProbability float64) []TopicProb {
	if author < 0 || int(author) >= m.NumAuthors() {
		panic(fmt.Sprintf("author %d out of range [0, %d)", author, m.NumAuthors()))
	}
	if minProbability < 0 {
		minProbability = m.cfg.MinProbability
	}
	if minProbability < 1e-8 {
		minProbability = 1e-8
	}

	row := m.Gamma.RawRowView(int(author))
	sum := floats.Sum(row)

	var topics []TopicProb
	for k, x := range row {
		if p := x / sum; p >= minProbability {
			topics = append(topics, TopicProb{Topic: k, Prob: p})
		}
	}
	return topics
}

// PrintTopics writes the topn strongest terms of every topic to w,
// one topic per line.  A nil vocabulary prints term ids.
func (m *Model) PrintTopics(w io.Writer, vocab *corpus.Vocabulary, topn int) {
	for k := 0; k < m.NumTopics(); k++ {
		fmt.Fprintf(w, "Topic %05d:", k)
		for _, t := range m.TopicTerms(k, topn) {
			name := strconv.Itoa(int(t.Term))
			if vocab != nil {
				name = vocab.Token(t.Term)
			}
			fmt.Fprintf(w, " %s (%.4f)", name, t.Prob)
		}
		fmt.Fprintln(w)
	}
}

// PrintAuthorTopics writes every author's topic distribution above
// minProbability to w, one author per line.  Author names come from
// the bound authorship; a model without one prints author ids.
func (m *Model) PrintAuthorTopics(w io.Writer, minProbability float64) {
	for a := 0; a < m.NumAuthors(); a++ {
		name := strconv.Itoa(a)
		if m.authorship != nil {
			name = m.authorship.Name(int32(a))
		}
		fmt.Fprintf(w, "Author %s:", name)
		for _, t := range m.AuthorTopics(int32(a), minProbability) {
			fmt.Fprintf(w, " %d (%.4f)", t.Topic, t.Prob)
		}
		fmt.Fprintln(w)
	}
}
