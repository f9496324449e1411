// plot renders training and corpus diagnostics as PDF figures: the
// variational bound and converged-document curves scraped from a
// train log, the document length histogram of a corpus, and the token
// frequency histogram of a vocabulary.
/*
  $GOPATH/bin/plot \
    -log=./train.INFO -corpus=./corpus.gz -vocab=./vocab.gz -outdir=/tmp
*/
package main

import (
	"bufio"
	"math"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"flag"

	log "github.com/golang/glog"
	cmprs "github.com/wangkuiyi/compress_io"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/latentlab/quill/core/corpus"
)

func main() {
	flagLog := flag.String("log", "", "The train log file")
	flagCorpus := flag.String("corpus", "", "The corpus file")
	flagVocab := flag.String("vocab", "", "The vocab file")
	flagOut := flag.String("outdir", "", "Output directory")
	flag.Parse()
	defer log.Flush()

	var wg sync.WaitGroup
	outFile := func(inFile, suffix string) string {
		return path.Join(*flagOut, path.Base(inFile)+suffix)
	}
	if len(*flagLog) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plotLog(*flagLog,
				outFile(*flagLog, ".bound.pdf"),
				outFile(*flagLog, ".converged.pdf"))
		}()
	}
	if len(*flagCorpus) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plotCorpus(*flagCorpus, outFile(*flagCorpus, ".doclen.pdf"))
		}()
	}
	if len(*flagVocab) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plotVocab(*flagVocab, outFile(*flagVocab, ".freq.pdf"))
		}()
	}
	wg.Wait()
}

// plotLog scrapes the bound evaluations and per-pass convergence
// counts that train logs.  A log file may hold several runs; the pass
// counter restarting marks a new run, and only the last run is kept.
func plotLog(logFile, boundImage, convergedImage string) {
	f, e := os.Open(logFile)
	if e != nil {
		log.Fatalf("Cannot open input file %s: %v", logFile, e)
	}
	defer f.Close()

	log.Infof("Loading log file %s ...", logFile)
	boundRe := regexp.MustCompile(`Total bound: (-?[0-9.eE+-]+)\. Word`)
	passRe := regexp.MustCompile(`Pass ([0-9]+): ([0-9]+)/[0-9]+ documents converged`)
	bounds := make(plotter.XYs, 0)
	converged := make(plotter.XYs, 0)
	maxInt := int(^uint(0) >> 1)
	prevPass := maxInt

	s := bufio.NewScanner(f)
	for s.Scan() {
		if ms := boundRe.FindStringSubmatch(s.Text()); len(ms) == 2 {
			b, e := strconv.ParseFloat(ms[1], 64)
			if e != nil {
				log.Fatalf("Parsing bound in %s: %v", s.Text(), e)
			}
			bounds = append(bounds, plotter.XY{X: float64(len(bounds)), Y: b})
			continue
		}

		ms := passRe.FindStringSubmatch(s.Text())
		if len(ms) == 3 {
			pass, e := strconv.Atoi(ms[1])
			if e != nil {
				log.Fatalf("Parsing pass seq in %s: %v", s.Text(), e)
			}
			docs, e := strconv.Atoi(ms[2])
			if e != nil {
				log.Fatalf("Parsing converged count in %s: %v", s.Text(), e)
			}

			if pass <= prevPass {
				converged = make(plotter.XYs, 0)
			}
			converged = append(converged, plotter.XY{X: float64(pass), Y: float64(docs)})
			prevPass = pass
		}
	}
	if e := s.Err(); e != nil {
		log.Fatalf("Reading %s error: %v", logFile, e)
	}
	log.Info("Done loading log file.")

	if len(bounds) > 0 {
		plotLine(bounds, logFile, "Evaluation", "Variational bound", boundImage)
	}
	if len(converged) > 0 {
		plotLine(converged, logFile, "Pass", "# converged documents", convergedImage)
	}
}

func plotCorpus(corpusFile, imageFile string) {
	f, e := os.Open(corpusFile)
	r := cmprs.NewReader(f, e, path.Ext(corpusFile))
	if r == nil {
		log.Fatalf("Cannot read file %s: %v", corpusFile, e)
	}
	defer r.Close()

	log.Infof("Loading corpus file %s ...", corpusFile)
	s := bufio.NewScanner(r)
	lens := make(plotter.Values, 0)
	for s.Scan() {
		d, e := corpus.ParseDocument(s.Text())
		if e != nil {
			log.Fatalf("Cannot parse corpus line %s: %v", s.Text(), e)
		}
		lens = append(lens, d.NumTokens())
	}
	if e := s.Err(); e != nil {
		log.Fatalf("Reading %s error: %v", corpusFile, e)
	}
	log.Info("Done loading corpus file.")

	plotHist(lens, corpusFile, "Document length", "# documents", imageFile)
}

func plotVocab(vocabFile, imageFile string) {
	f, e := os.Open(vocabFile)
	r := cmprs.NewReader(f, e, path.Ext(vocabFile))
	if r == nil {
		log.Fatalf("Cannot read file %s: %v", vocabFile, e)
	}
	defer r.Close()

	log.Infof("Loading vocab file %s ...", vocabFile)
	s := bufio.NewScanner(r)
	freq := make(plotter.Values, 0)
	for s.Scan() {
		fs := strings.Fields(s.Text())
		if len(fs) != 2 {
			log.Fatalf("Vocab file line contains not 2 fields: %s", s.Text())
		}

		if f, e := strconv.Atoi(fs[1]); e != nil {
			log.Fatalf("Cannot parse frequency in line %s: %v", s.Text(), e)
		} else {
			freq = append(freq, float64(f))
		}
	}
	if e := s.Err(); e != nil {
		log.Fatalf("Reading %s error: %v", vocabFile, e)
	}
	log.Info("Done loading vocab.")

	plotHist(freq, vocabFile, "Token frequency", "# tokens", imageFile)
}

func plotLine(data plotter.XYs, title, xLabel, yLabel, imageFile string) {
	log.Infof("Plotting to %s ...", imageFile)
	p := plot.New()

	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	if e := plotutil.AddLinePoints(p, "", data); e != nil {
		log.Fatalf("plotutil.AddLinePoints failed: %v", e)
	}

	if e := p.Save(9*vg.Inch, 6*vg.Inch, imageFile); e != nil {
		log.Fatalf("Cannot save image to %s: %v", imageFile, e)
	}

	log.Infof("Done plotting to %s.", imageFile)
}

func plotHist(data plotter.Values, title, xLabel, yLabel, imageFile string) {
	log.Infof("Plotting to %s ...", imageFile)
	p := plot.New()

	h, e := plotter.NewHist(data, 50)
	if e != nil {
		log.Fatalf("plotter.NewHist failed: %v", e)
	}
	p.Add(h)

	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Y.Min = 1
	_, _, _, p.Y.Max = h.DataRange()
	p.Y.Scale = logScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	if e := p.Save(9*vg.Inch, 6*vg.Inch, imageFile); e != nil {
		log.Fatalf("Cannot save image to %s: %v", imageFile, e)
	}

	log.Infof("Done plotting to %s.", imageFile)
}

// logScale is like plot.LogScale but tolerates the zero counts that
// histograms of sparse data produce.
type logScale struct{}

func (logScale) Normalize(min, max, x float64) float64 {
	logMin := ln(min)
	return (ln(x) - logMin) / (ln(max) - logMin)
}

func ln(x float64) float64 {
	if x <= 0 {
		x = 0.01
	}
	return math.Log(x)
}
