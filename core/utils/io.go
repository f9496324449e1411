package utils

import (
	"bufio"
	"encoding/gob"
	"os"
	"path"
	"strings"

	log "github.com/golang/glog"
	cmprs "github.com/wangkuiyi/compress_io"

	"github.com/latentlab/quill/core/atvb"
	"github.com/latentlab/quill/core/corpus"
)

func LoadVocabOrDie(filename string) *corpus.Vocabulary {
	log.Infof("Loading vocab %s ... ", filename)

	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open vocab file %s: %v", filename, e)
	}

	defer r.Close()
	vocab := corpus.NewVocabulary()
	if e := vocab.Load(r); e != nil {
		log.Fatalf("Failed loading vocab file %s: %v", filename, e)
	}

	log.Info("Done loading vocabulary.")
	return vocab
}

// LoadCorpusOrDie keeps every line of the file as a document, blank
// lines included, because authorship files refer to documents by
// their position in the corpus file.
func LoadCorpusOrDie(filename string) corpus.Corpus {
	log.Infof("Loading corpus %s ... ", filename)

	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open corpus file %s: %v", filename, e)
	}

	defer r.Close()
	c, e := corpus.Load(r)
	if e != nil {
		log.Fatalf("Failed loading corpus file %s: %v", filename, e)
	}
	if len(c) == 0 {
		log.Fatal("corpus contains no document!")
	}

	log.Infof("Done loading corpus: %d documents, %g tokens.",
		len(c), c.NumTokens())
	return c
}

func LoadAuthorshipOrDie(filename string, numDocs int) *corpus.Authorship {
	log.Infof("Loading authorship %s ... ", filename)

	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open authorship file %s: %v", filename, e)
	}

	defer r.Close()
	a, e := corpus.LoadAuthorship(r, numDocs)
	if e != nil {
		log.Fatalf("Failed loading authorship file %s: %v", filename, e)
	}

	log.Infof("Done loading authorship: %d authors.", a.NumAuthors())
	return a
}

func LoadModelOrDie(filename string) *atvb.Model {
	log.Infof("Loading model %s ...", filename)
	m := new(atvb.Model)

	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		log.Fatalf("Cannot open model file %s: %v", filename, e)
	}
	defer r.Close()

	dec := gob.NewDecoder(r)
	if e := dec.Decode(m); e != nil {
		log.Fatalf("Cannot decode model: %v", e)
	}

	log.Infof("Done. %d topics, %d terms, %d authors.",
		m.NumTopics(), m.NumTerms(), m.NumAuthors())
	return m
}

func SaveModel(model *atvb.Model, filename string) {
	if len(filename) > 0 {
		f, e := os.Create(filename)
		w := cmprs.NewWriter(f, e, path.Ext(filename))
		if w == nil {
			log.Errorf("Cannot create file %s: %v", filename, e)
		} else {
			defer func() {
				w.Close()
				log.Infof("Saved model to %s.", filename)
			}()
			enc := gob.NewEncoder(w)
			if e := enc.Encode(model); e != nil {
				log.Errorf("Failed encoding model: %v", e)
			}
		}
	}
}

type Trans map[string]string

// TranslatedVocab rewrites tokens through a translation table, so
// models trained on normalized or stemmed text print readable words.
func TranslatedVocab(v *corpus.Vocabulary, tr Trans) *corpus.Vocabulary {
	log.Info("Translating vocabulary ... ")
	for i, s := range v.Tokens {
		if t, exist := tr[s]; exist {
			v.Tokens[i] = t
		} else {
			log.Warningf("Cannot translate %s", s)
		}
	}
	log.Info("Done with translating vocabulary.")
	return v
}

func LoadTranslationOrDie(filename string) Trans {
	log.Infof("Loading translation %s ...", filename)
	trans := make(map[string]string)

	f, e := os.Open(filename)
	if r := cmprs.NewReader(f, e, path.Ext(filename)); r == nil {
		log.Fatalf("Cannot load from %s", filename)
	} else {
		defer r.Close()
		s := bufio.NewScanner(r)
		for s.Scan() {
			fs := strings.Fields(s.Text())
			if len(fs) < 2 {
				log.Fatalf("%v has less than 2 fields", fs)
			}
			if _, exist := trans[fs[0]]; exist {
				log.Fatalf("Found duplicated token (%s) in %s", fs[0], fs)
			}
			trans[fs[0]] = strings.Join(fs[1:], " ")
		}
		if e := s.Err(); e != nil {
			log.Fatalf("Reading %s error: %v", filename, e)
		}
	}

	log.Infof("Done loading translation, %d entries.", len(trans))
	return trans
}
