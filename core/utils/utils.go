package utils

import (
	"bytes"
	"expvar"
	"fmt"
	"io"
	"math"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strings"
	"time"

	log "github.com/golang/glog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/latentlab/quill/core/atvb"
)

type Pass struct {
	When      time.Time
	Duration  time.Duration
	Bound     float64
	Converged int
	Docs      int
}
type Passes []*Pass

func (ps *Passes) String() string { // Implements expvar.Var
	var buf bytes.Buffer
	for i, p := range *ps {
		fmt.Fprintf(&buf, "%05d: %s\t%s\t%d/%d\t%.4e\n",
			i, p.When, p.Duration, p.Converged, p.Docs, p.Bound)
	}
	return buf.String()
}

// Record appends one finished training pass.  It is meant to be the
// model's OnPass callback.
func (ps *Passes) Record(s atvb.PassStats) {
	*ps = append(*ps, &Pass{
		When:      time.Now(),
		Duration:  s.Duration,
		Bound:     s.Bound,
		Converged: s.Converged,
		Docs:      s.Docs,
	})
}

// EnableExpvar publishes training progress at addr: the standard
// /debug/vars and pprof pages, plus PNG figures of the bound and the
// pass durations under /progress/.
func EnableExpvar(addr string) *Passes {
	ps := new(Passes)
	*ps = make(Passes, 0)

	expvar.Publish("Passes", ps)
	http.Handle("/progress/bound", newBoundFigureHandler(ps))
	http.Handle("/progress/duration", newDurationFigureHandler(ps))

	go func() {
		if e := http.ListenAndServe(addr, nil); e != nil {
			log.Fatalf("ListenAndServe on %s failed: %v", addr, e)
		}
	}()

	return ps
}

func newBoundFigureHandler(ps *Passes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		xys := make(plotter.XYs, 0, len(*ps))
		for i, p := range *ps {
			if !math.IsNaN(p.Bound) {
				// Passes between evaluations carry no bound.
				xys = append(xys, plotter.XY{X: float64(i), Y: p.Bound})
			}
		}
		if e := plotFigure(w, xys, "Pass", "Bound"); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
		}
	}
}

func newDurationFigureHandler(ps *Passes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		xys := make(plotter.XYs, 0, len(*ps))
		for i, p := range *ps {
			if p.Duration > 0 {
				xys = append(xys, plotter.XY{X: float64(i), Y: p.Duration.Minutes()})
			}
		}
		if e := plotFigure(w, xys, "Pass", "Duration"); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
		}
	}
}

func plotFigure(w io.Writer, xys plotter.XYs, xLabel, yLabel string) error {
	p := plot.New()
	p.Title.Text = strings.Join(os.Args, " ")
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	p.Add(plotter.NewGrid())
	if e := plotutil.AddLinePoints(p, "", xys); e != nil {
		return fmt.Errorf("plotutil.AddLinePoints failed: %v", e)
	}

	c := vgimg.PngCanvas{Canvas: vgimg.New(vg.Length(640), vg.Length(480))}
	p.Draw(draw.New(c))
	_, e := c.WriteTo(w)
	return e
}
