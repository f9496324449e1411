package corpus

import "strings"

const (
	testingNumTerms = 4
	testingNumDocs  = 3
)

// CreateTestingVocabulary loads a vocabulary of testingNumTerms
// tokens with ids assigned in file order.
func CreateTestingVocabulary() (*Vocabulary, error) {
	r := strings.NewReader("apple 100\norange	whatever\n\ncat\ntiger")
	v := NewVocabulary()
	e := v.Load(r)
	return v, e
}

// CreateTestingCorpus loads testingNumDocs documents over
// testingNumTerms terms.
func CreateTestingCorpus() (Corpus, error) {
	return Load(strings.NewReader("0:3 1:1\n2:2 3:2\n1:1\n"))
}

// CreateTestingAuthorship spans testingNumDocs documents: alice wrote
// documents 0 and 2, bob wrote 1 and 2.
func CreateTestingAuthorship() (*Authorship, error) {
	return NewAuthorship([]string{"alice", "bob"},
		[][]int32{{0, 2}, {1, 2}}, nil, testingNumDocs)
}
