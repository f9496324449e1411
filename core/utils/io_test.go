package utils

import (
	"os"
	"path"
	"reflect"
	"strings"
	"testing"

	log "github.com/golang/glog"
	cmprs "github.com/wangkuiyi/compress_io"

	"github.com/latentlab/quill/core/atvb"
	"github.com/latentlab/quill/core/corpus"
)

// Must match core/corpus/test_utils.go.
const testingCorpusContent = "0:3 1:1\n2:2 3:2\n1:1\n"

func TestLoadVocabOrDie(t *testing.T) {
	dir := t.TempDir()

	v, e := corpus.CreateTestingVocabulary()
	if e != nil {
		t.Fatalf("CreateTestingVocabulary: %v", e)
	}

	gzFile := createTempVocab(dir, ".gz", strings.Join(v.Tokens, "\n"))
	if len(gzFile) == 0 {
		t.Fatalf("createTempVocab failed")
	}

	v2 := LoadVocabOrDie(gzFile)
	if !reflect.DeepEqual(v, v2) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", v, v2)
	}

	plainFile := createTempVocab(dir, "", strings.Join(v.Tokens, "\n"))
	if len(plainFile) == 0 {
		t.Fatalf("createTempVocab failed")
	}

	v2 = LoadVocabOrDie(plainFile)
	if !reflect.DeepEqual(v, v2) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", v, v2)
	}
}

func TestLoadTranslationOrDie(t *testing.T) {
	dir := t.TempDir()

	v, e := corpus.CreateTestingVocabulary()
	if e != nil {
		t.Fatalf("CreateTestingVocabulary: %v", e)
	}

	gzFile := createTempVocab(dir, ".gz", strings.Join(v.Tokens, "\n"))
	if len(gzFile) == 0 {
		t.Fatalf("createTempVocab failed")
	}

	trans := make([]string, len(v.Tokens))
	truth := make([]string, len(v.Tokens))
	for i, tok := range v.Tokens {
		trans[i] = tok + " " + "The " + tok
		truth[i] = "The " + tok
	}
	transFile := createTempFile(dir, "trans", ".gz", strings.Join(trans, "\n"))
	if len(transFile) == 0 {
		t.Fatalf("createTempFile failed")
	}

	v = LoadVocabOrDie(gzFile)
	tr := LoadTranslationOrDie(transFile)
	v1 := TranslatedVocab(v, tr)
	if !reflect.DeepEqual(v1.Tokens, truth) {
		t.Errorf("Expecting\n%v\ngot\n%v\n", truth, v1.Tokens)
	}
}

func TestLoadCorpusOrDie(t *testing.T) {
	dir := t.TempDir()

	truth, e := corpus.CreateTestingCorpus()
	if e != nil {
		t.Fatalf("CreateTestingCorpus: %v", e)
	}

	for _, ext := range []string{"", ".gz"} {
		f := createTempCorpus(dir, ext, testingCorpusContent)
		if len(f) == 0 {
			t.Fatalf("createTempCorpus failed")
		}

		c := LoadCorpusOrDie(f)
		if !reflect.DeepEqual(truth, c) {
			t.Errorf("Expecting %v, got %v", truth, c)
		}
	}
}

func TestLoadAuthorshipOrDie(t *testing.T) {
	dir := t.TempDir()

	truth, e := corpus.CreateTestingAuthorship()
	if e != nil {
		t.Fatalf("CreateTestingAuthorship: %v", e)
	}

	f := createTempFile(dir, "authors", ".gz", "alice 0 2\nbob 1 2\n")
	if len(f) == 0 {
		t.Fatalf("createTempFile failed")
	}

	a := LoadAuthorshipOrDie(f, 3)
	if !reflect.DeepEqual(truth.Names, a.Names) {
		t.Errorf("Expecting names %v, got %v", truth.Names, a.Names)
	}
	if !reflect.DeepEqual(truth.AuthorDocs, a.AuthorDocs) {
		t.Errorf("Expecting author docs %v, got %v", truth.AuthorDocs, a.AuthorDocs)
	}
	if !reflect.DeepEqual(truth.DocAuthors, a.DocAuthors) {
		t.Errorf("Expecting doc authors %v, got %v", truth.DocAuthors, a.DocAuthors)
	}
}

func TestSaveAndLoadModelOrDie(t *testing.T) {
	dir := t.TempDir()

	c, e := corpus.CreateTestingCorpus()
	if e != nil {
		t.Fatalf("CreateTestingCorpus: %v", e)
	}
	auth, e := corpus.CreateTestingAuthorship()
	if e != nil {
		t.Fatalf("CreateTestingAuthorship: %v", e)
	}
	cfg := atvb.DefaultConfig()
	cfg.NumTopics = 2
	m, e := atvb.NewModel(&cfg, c, auth)
	if e != nil {
		t.Fatalf("NewModel: %v", e)
	}

	for _, name := range []string{"model.gz", "model"} {
		fn := path.Join(dir, name)
		SaveModel(m, fn)
		m1 := LoadModelOrDie(fn)

		if !reflect.DeepEqual(m.Gamma.RawMatrix().Data, m1.Gamma.RawMatrix().Data) {
			t.Errorf("Gamma differs after reloading %s", fn)
		}
		if !reflect.DeepEqual(m.Lambda.RawMatrix().Data, m1.Lambda.RawMatrix().Data) {
			t.Errorf("Lambda differs after reloading %s", fn)
		}
		if m.Config() != m1.Config() {
			t.Errorf("Expecting config %v, got %v", m.Config(), m1.Config())
		}
		if m.T() != m1.T() {
			t.Errorf("Expecting t = %d, got %d", m.T(), m1.T())
		}
	}
}

func createTempVocab(dir, ext, content string) string {
	return createTempFile(dir, "vocab", ext, content)
}

func createTempCorpus(dir, ext, content string) string {
	return createTempFile(dir, "corpus", ext, content)
}

func createTempFile(dir, name, ext, content string) string {
	filename := path.Join(dir, name+ext)
	f, e := os.Create(filename)
	w := cmprs.NewWriter(f, e, path.Ext(filename))
	if w == nil {
		log.Errorf("NewCompressWriter failed")
		return ""
	}
	defer w.Close()

	if _, e := w.Write([]byte(content)); e != nil {
		log.Errorf("Failed writing to temp file %s: %v", filename, e)
	}

	return filename
}
