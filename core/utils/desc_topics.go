package utils

import (
	"html/template"
	"runtime"
	"strconv"

	log "github.com/golang/glog"
	"github.com/wangkuiyi/parallel"
	"gonum.org/v1/gonum/floats"

	"github.com/latentlab/quill/core/atvb"
	"github.com/latentlab/quill/core/corpus"
)

func DescribeTopics(m *atvb.Model, v *corpus.Vocabulary,
	maxTermsPerTopic int) []*TopicDesc {

	log.Info("Generating topic descriptions ... ")
	descs := make([]*TopicDesc, m.NumTopics())

	parallel.ForN(0, m.NumTopics(), 1, 2*runtime.NumCPU(), func(topic int) {
		terms := m.TopicTerms(topic, maxTermsPerTopic)
		d := &TopicDesc{
			Id: topic,
			// The lambda row sums to eta*V plus the expected number
			// of tokens the topic explains, a frequency analogue.
			Weight: floats.Sum(m.Lambda.RawRowView(topic)),
			Tokens: make([]TokenDesc, 0, len(terms))}
		for _, t := range terms {
			d.Tokens = append(d.Tokens,
				TokenDesc{template.HTML(v.Token(t.Term)), t.Prob})
		}
		descs[topic] = d
	})

	log.Info("Done generating topic descriptions.")
	return descs
}

// DescribeAuthors lists every author's topics above minProbability,
// using the authorship bound to the model for names.
func DescribeAuthors(m *atvb.Model, minProbability float64) []*AuthorDesc {
	log.Info("Generating author descriptions ... ")
	descs := make([]*AuthorDesc, m.NumAuthors())

	auth := m.Authorship()
	parallel.ForN(0, m.NumAuthors(), 1, 2*runtime.NumCPU(), func(a int) {
		name := strconv.Itoa(a)
		if auth != nil {
			name = auth.Name(int32(a))
		}
		descs[a] = &AuthorDesc{
			Id:     a,
			Name:   name,
			Topics: m.AuthorTopics(int32(a), minProbability),
		}
	})

	log.Info("Done generating author descriptions.")
	return descs
}

type TopicDesc struct {
	Id     int
	Weight float64
	Tokens []TokenDesc
}
type TokenDesc struct {
	Word template.HTML
	Prob float64
}

type AuthorDesc struct {
	Id     int
	Name   string
	Topics []atvb.TopicProb
}
