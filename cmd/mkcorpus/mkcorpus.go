// mkcorpus converts raw authored text into the corpus, vocabulary,
// and authorship files that train reads.  Every input line holds one
// document: a comma-separated author list, a tab, and the text.
//
//	ann,bob	the raw text of the document
//
// Tokens are whitespace-separated by default; with -segmenter, text
// is segmented by a sego dictionary instead, which handles languages
// written without spaces.  Output files ending in .gz are compressed.
/*
  $GOPATH/bin/mkcorpus \
    -input=./raw.tsv -corpus=./corpus.gz -vocab=./vocab.gz \
    -authors=./authors.gz -min_count=5
*/
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"flag"

	log "github.com/golang/glog"
	"github.com/huichen/sego"
	cmprs "github.com/wangkuiyi/compress_io"

	"github.com/latentlab/quill/core/corpus"
)

func main() {
	flagInput := flag.String("input", "", "Raw input: author list, tab, text")
	flagCorpus := flag.String("corpus", "", "Corpus output file")
	flagVocab := flag.String("vocab", "", "Vocabulary output file")
	flagAuthors := flag.String("authors", "", "Authorship output file")
	flagSegmenter := flag.String("segmenter", "", "sego dictionary; empty splits on whitespace")
	flagMinCount := flag.Int("min_count", 1, "Drop tokens seen fewer times")
	flag.Parse()
	defer log.Flush()

	tokenize := fieldsTokenizer()
	if len(*flagSegmenter) > 0 {
		tokenize = segoTokenizer(*flagSegmenter)
	}

	docs, docAuthors := readRawOrDie(*flagInput, tokenize)
	vocab, counts := buildVocab(docs, *flagMinCount)
	log.Infof("Kept %d of %d distinct tokens.", vocab.Len(), len(counts))

	writeCorpusOrDie(*flagCorpus, docs, vocab)
	writeVocabOrDie(*flagVocab, vocab, counts)
	writeAuthorsOrDie(*flagAuthors, docAuthors, len(docs))
}

func fieldsTokenizer() func(string) []string {
	return strings.Fields
}

func segoTokenizer(dict string) func(string) []string {
	log.Infof("Loading segmenter %s ...", dict)
	sgt := new(sego.Segmenter)
	sgt.LoadDictionary(dict)
	log.Info("Done")

	return func(text string) []string {
		segs := sgt.Segment([]byte(text))
		tokens := make([]string, 0, len(segs))
		for _, seg := range segs {
			t := strings.TrimSpace(seg.Token().Text())
			if len(t) > 0 && len(strings.Fields(t)) == 1 {
				tokens = append(tokens, t)
			}
		}
		return tokens
	}
}

func readRawOrDie(filename string, tokenize func(string) []string) (
	[][]string, [][]string) {

	log.Infof("Reading raw input %s ...", filename)
	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open input file %s: %v", filename, e)
	}
	defer r.Close()

	var docs [][]string
	var docAuthors [][]string
	lineno := 0
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for s.Scan() {
		lineno++
		line := s.Text()
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		sep := strings.IndexByte(line, '\t')
		if sep < 0 {
			log.Fatalf("Line %d has no tab between authors and text", lineno)
		}
		var authors []string
		for _, a := range strings.Split(line[:sep], ",") {
			a = strings.TrimSpace(a)
			if len(a) == 0 {
				continue
			}
			if len(strings.Fields(a)) != 1 {
				log.Fatalf("Line %d: author name %q contains whitespace", lineno, a)
			}
			authors = append(authors, a)
		}
		if len(authors) == 0 {
			log.Fatalf("Line %d has no authors", lineno)
		}

		docs = append(docs, tokenize(line[sep+1:]))
		docAuthors = append(docAuthors, authors)
	}
	if e := s.Err(); e != nil {
		log.Fatalf("Reading %s error: %v", filename, e)
	}

	log.Infof("Done reading raw input: %d documents.", len(docs))
	return docs, docAuthors
}

// buildVocab assigns ids to tokens seen at least minCount times, most
// frequent first so low ids carry most of the corpus.
func buildVocab(docs [][]string, minCount int) (*corpus.Vocabulary, map[string]int) {
	counts := make(map[string]int)
	for _, d := range docs {
		for _, t := range d {
			counts[t]++
		}
	}

	kept := make([]string, 0, len(counts))
	for t, c := range counts {
		if c >= minCount {
			kept = append(kept, t)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if counts[kept[i]] != counts[kept[j]] {
			return counts[kept[i]] > counts[kept[j]]
		}
		return kept[i] < kept[j]
	})

	vocab := corpus.NewVocabulary()
	for _, t := range kept {
		vocab.Add(t)
	}
	return vocab, counts
}

func writeCorpusOrDie(filename string, docs [][]string, vocab *corpus.Vocabulary) {
	w := createOrDie(filename)
	defer w.Close()

	for _, d := range docs {
		bag := make(map[int32]int)
		for _, t := range d {
			if id := vocab.Id(t); id >= 0 {
				bag[id]++
			}
		}
		ids := make([]int32, 0, len(bag))
		for id := range bag {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		sep := ""
		for _, id := range ids {
			fmt.Fprintf(w, "%s%d:%d", sep, id, bag[id])
			sep = " "
		}
		fmt.Fprintln(w)
	}
	log.Infof("Wrote corpus to %s.", filename)
}

func writeVocabOrDie(filename string, vocab *corpus.Vocabulary, counts map[string]int) {
	w := createOrDie(filename)
	defer w.Close()

	for _, t := range vocab.Tokens {
		fmt.Fprintf(w, "%s\t%d\n", t, counts[t])
	}
	log.Infof("Wrote vocabulary to %s.", filename)
}

func writeAuthorsOrDie(filename string, docAuthors [][]string, numDocs int) {
	ids := make(map[string]int32)
	var names []string
	byDoc := make([][]int32, len(docAuthors))
	for d, authors := range docAuthors {
		for _, name := range authors {
			id, ok := ids[name]
			if !ok {
				id = int32(len(names))
				ids[name] = id
				names = append(names, name)
			}
			byDoc[d] = append(byDoc[d], id)
		}
	}

	a, e := corpus.NewAuthorship(names, nil, byDoc, numDocs)
	if e != nil {
		log.Fatalf("Cannot build authorship: %v", e)
	}

	w := createOrDie(filename)
	defer w.Close()
	if e := a.Save(w); e != nil {
		log.Fatalf("Cannot write authorship to %s: %v", filename, e)
	}
	log.Infof("Wrote authorship of %d authors to %s.", a.NumAuthors(), filename)
}

func createOrDie(filename string) io.WriteCloser {
	f, e := os.Create(filename)
	w := cmprs.NewWriter(f, e, path.Ext(filename))
	if w == nil {
		log.Fatalf("Cannot create file %s: %v", filename, e)
	}
	return w
}
