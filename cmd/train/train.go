// train fits an author-topic model to a corpus by online variational
// inference.  The model configuration is a JSON flag, so a whole
// experiment fits on one command line:
/*
  $GOPATH/bin/train \
    -corpus=./testdata/corpus -authors=./testdata/authors \
    -config='{"NumTopics":20,"Passes":5}' -model=/tmp/model.gz \
    -logtostderr
*/
// While training, progress is served on -addr: /debug/vars carries
// the pass log, and /progress/bound and /progress/duration render
// figures.  On SIGINT the trainer finishes the current document,
// saves the model, and exits.
package main

import (
	"flag"
	"os"
	"os/signal"

	log "github.com/golang/glog"

	"github.com/latentlab/quill/core/atvb"
	"github.com/latentlab/quill/core/utils"
)

func main() {
	flagAddr := flag.String("addr", ":6060", "HTTP status page address")
	flagCorpus := flag.String("corpus", "./testdata/corpus", "Corpus file")
	flagAuthors := flag.String("authors", "./testdata/authors", "Authorship file")
	flagVocab := flag.String("vocab", "", "Vocabulary file, sets the vocabulary size")
	flagModel := flag.String("model", "", "The model output")
	cfg := atvb.DefaultConfig()
	cfg.RegisterAsFlag()
	flag.Parse()
	defer log.Flush()

	ps := utils.EnableExpvar(*flagAddr)

	c := utils.LoadCorpusOrDie(*flagCorpus)
	auth := utils.LoadAuthorshipOrDie(*flagAuthors, len(c))
	if len(*flagVocab) > 0 {
		cfg.NumTerms = utils.LoadVocabOrDie(*flagVocab).Len()
	}

	model, e := atvb.NewModel(&cfg, c, auth)
	if e != nil {
		log.Fatalf("Cannot build model: %v", e)
	}
	model.OnPass = ps.Record

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		for range sigs {
			log.Info("Caught signal, will checkpoint and exit ...")
			model.Interrupt()
		}
	}()

	if e := model.Infer(nil); e != nil {
		log.Fatalf("Inference failed: %v", e)
	}

	utils.SaveModel(model, *flagModel)
}
