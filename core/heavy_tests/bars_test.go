package heavy_tests

import (
	"bytes"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/latentlab/quill/core/atvb"
	"github.com/latentlab/quill/core/corpus"
)

var (
	flagRunLongTests = flag.Bool("run_long_tests", false,
		"If to run tests that take a long time to finish")
)

// In their paper "Finding Scientific Topics" on PNAS 2004, Thomas
// Griffiths and Mark Steyvers verify a topic model learner on
// synthetic data: topics are horizontal and vertical bars over a
// pixel-grid vocabulary, documents are sampled from them, and the
// learner should recover bar-like topics.  Here each bar belongs to
// one synthetic author, and a third of the documents carry two
// authors, so the fit also has to attribute words to authors.
//
// Exact bar recovery depends on the random permutation of learned
// topics, so the assertions below check what must hold for any decent
// fit: training improves the bound and the corpus log probability far
// beyond a uniform model, and every author's topic distribution
// concentrates.
func TestRecoverBars(t *testing.T) {
	if !*flagRunLongTests {
		t.Skipf("Skip TestRecoverBars without -run_long_tests")
	}

	rng := rand.New(rand.NewSource(-1))
	c, auth, e := createBarsTrainingData(rng)
	if e != nil {
		t.Fatalf("Cannot build synthetic corpus: %v", e)
	}

	cfg := atvb.DefaultConfig()
	cfg.NumTopics = groundTruthK
	cfg.NumTerms = groundTruthV
	cfg.Passes = kPasses
	cfg.Iterations = 30
	cfg.EvalEvery = 4

	m, e := atvb.NewModel(&cfg, c, auth)
	if e != nil {
		t.Fatalf("NewModel: %v", e)
	}

	ev := atvb.NewEvaluator(m, nil)
	_, _, _, before := ev.Bound()
	lwpBefore := ev.LogWordProb()

	if e := m.Infer(nil); e != nil {
		t.Fatalf("Infer: %v", e)
	}

	_, _, _, after := ev.Bound()
	if after <= before {
		t.Errorf("Bound did not improve: %v -> %v", before, after)
	}

	lwpAfter := ev.LogWordProb()
	if lwpAfter <= lwpBefore {
		t.Errorf("Log word probability did not improve: %v -> %v",
			lwpBefore, lwpAfter)
	}
	tokens := 0.0
	for _, d := range c {
		tokens += d.NumTokens()
	}
	if uniform := tokens * math.Log(1.0/float64(groundTruthV)); lwpAfter <= uniform {
		t.Errorf("Fitted model no better than uniform: %v <= %v",
			lwpAfter, uniform)
	}

	for a := 0; a < auth.NumAuthors(); a++ {
		top := 0.0
		for _, tp := range m.AuthorTopics(int32(a), 0) {
			if tp.Prob > top {
				top = tp.Prob
			}
		}
		// Every synthetic author writes from a single bar, so the
		// fitted distribution must put bulk mass on few topics.
		if top < 1.5/float64(groundTruthK) {
			t.Errorf("Author %s stays diffuse: strongest topic at %v",
				auth.Name(int32(a)), top)
		}
	}

	w := new(bytes.Buffer)
	m.PrintTopics(w, pixelVocab(), 3)
	t.Logf("Learned topics:\n%s", w.String())
}

// createBarsTrainingData samples kNumDocs documents from the bar
// topics.  Document d is written by author d mod 6, every third
// document also by the next author; each of its kDocLen words picks
// one of the document's authors uniformly and then a word from that
// author's bar.
func createBarsTrainingData(rng *rand.Rand) (
	corpus.Corpus, *corpus.Authorship, error) {

	names := []string{"row0", "row1", "row2", "col0", "col1", "col2"}
	c := make(corpus.Corpus, kNumDocs)
	docAuthors := make([][]int32, kNumDocs)
	for d := range c {
		as := []int32{int32(d % groundTruthK)}
		if d%3 == 0 {
			as = append(as, int32((d+1)%groundTruthK))
		}
		docAuthors[d] = as
		c[d] = synthesizeDocument(as, rng)
	}

	auth, e := corpus.NewAuthorship(names, nil, docAuthors, kNumDocs)
	if e != nil {
		return nil, nil, e
	}
	return c, auth, nil
}

func synthesizeDocument(authors []int32, rng *rand.Rand) *corpus.Document {
	bag := make(map[int32]float64)
	for i := 0; i < kDocLen; i++ {
		topic := int(authors[rng.Intn(len(authors))])
		w := int32(sampleDiscrete(groundTruthModel[topic], rng))
		bag[w]++
	}
	return bagToDocument(bag)
}

func sampleDiscrete(dist []float64, rng *rand.Rand) int {
	if len(dist) <= 0 {
		panic("sample from empty distribution")
	}
	sum := 0.0
	for _, v := range dist {
		if v < 0 {
			panic(fmt.Sprintf("bad dist: %v", dist))
		}
		sum += v
	}
	u := rng.Float64() * sum
	sum = 0
	for i, v := range dist {
		sum += v
		if u < sum {
			return i
		}
	}
	panic("sampleDiscrete gets out of all possibilities")
}

func bagToDocument(bag map[int32]float64) *corpus.Document {
	d := &corpus.Document{
		Words:  make([]int32, 0, len(bag)),
		Counts: make([]float64, 0, len(bag)),
	}
	for w := range bag {
		d.Words = append(d.Words, w)
	}
	sort.Slice(d.Words, func(i, j int) bool { return d.Words[i] < d.Words[j] })
	for _, w := range d.Words {
		d.Counts = append(d.Counts, bag[w])
	}
	return d
}

// pixelVocab names term i of the 3x3 grid by its row and column
// digits, so printed bar topics are recognizable at a glance.
func pixelVocab() *corpus.Vocabulary {
	v := corpus.NewVocabulary()
	for i := 0; i < groundTruthV; i++ {
		v.Add(fmt.Sprintf("%d%d", i/3, i%3))
	}
	return v
}
