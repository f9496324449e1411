package atvb

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"

	"github.com/juju/errors"
	"github.com/wangkuiyi/file"
)

// Config collects the hyperparameters and schedule of an author-topic
// model.  The zero values of Alpha, Eta and NumTerms mean "derive":
// Alpha defaults to 1/NumTopics, Eta to 1/NumTerms, and NumTerms to
// one more than the largest word id in the training corpus.
type Config struct {
	NumTopics  int     // number of latent topics
	NumTerms   int     // vocabulary size; 0 means derive from corpus
	Alpha      float64 // symmetric author-topic Dirichlet prior; 0 means 1/NumTopics
	Eta        float64 // symmetric topic-term Dirichlet prior; 0 means 1/NumTerms
	Passes     int     // sweeps over the corpus per Infer call
	Iterations int     // maximum local fixed-point iterations per document
	Threshold  float64 // local convergence bound on mean parameter change

	Decay  float64 // learning rate exponent kappa
	Offset float64 // learning rate offset tau0

	EvalEvery      int     // evaluate the bound every this many passes; 0 disables
	MinProbability float64 // default cutoff for AuthorTopics queries
	Seed           uint64  // seed of the initialization PRNG
}

// DefaultConfig are the settings used when a flag or file leaves a
// field unset.
func DefaultConfig() Config {
	return Config{
		NumTopics:      100,
		Passes:         1,
		Iterations:     10,
		Threshold:      0.001,
		Decay:          0.5,
		Offset:         1.0,
		EvalEvery:      1,
		MinProbability: 0.01,
		Seed:           42,
	}
}

func (c *Config) Validate() error {
	if c.NumTopics < 1 {
		return errors.Errorf("NumTopics must be positive, got %d", c.NumTopics)
	}
	if c.NumTerms < 0 {
		return errors.Errorf("NumTerms must be non-negative, got %d", c.NumTerms)
	}
	if c.Alpha < 0 {
		return errors.Errorf("Alpha must be non-negative, got %f", c.Alpha)
	}
	if c.Eta < 0 {
		return errors.Errorf("Eta must be non-negative, got %f", c.Eta)
	}
	if c.Passes < 0 {
		return errors.Errorf("Passes must be non-negative, got %d", c.Passes)
	}
	if c.Iterations < 1 {
		return errors.Errorf("Iterations must be positive, got %d", c.Iterations)
	}
	if c.Threshold <= 0 {
		return errors.Errorf("Threshold must be positive, got %f", c.Threshold)
	}
	if c.Decay <= 0 || c.Decay > 1 {
		return errors.Errorf("Decay must be in (0, 1], got %f", c.Decay)
	}
	if c.Offset < 1 {
		return errors.Errorf("Offset must be at least 1, got %f", c.Offset)
	}
	if c.EvalEvery < 0 {
		return errors.Errorf("EvalEvery must be non-negative, got %d", c.EvalEvery)
	}
	if c.MinProbability < 0 || c.MinProbability >= 1 {
		return errors.Errorf("MinProbability must be in [0, 1), got %f", c.MinProbability)
	}
	return nil
}

// String and Set make Config a flag.Value whose text form is JSON, so
// a whole configuration can be passed on the command line or logged in
// one line.
func (c Config) String() string {
	b, e := json.Marshal(c)
	if e != nil {
		panic(fmt.Sprintf("Failed encoding config: %v", e))
	}
	return string(b)
}

func (c *Config) Set(s string) error {
	if e := json.Unmarshal([]byte(s), c); e != nil {
		return errors.Annotatef(e, "parsing config %s", s)
	}
	return errors.Trace(c.Validate())
}

func (c *Config) RegisterAsFlag() {
	flag.Var(c, "config", "JSON-encoded model configuration")
}

// LoadConfig reads a JSON config file on local FS, HDFS, or in-memory
// FS, applies it on top of the defaults, and validates the result.
func LoadConfig(filename string) (*Config, error) {
	f, e := file.Open(filename)
	if e != nil {
		return nil, errors.Annotatef(e, "opening config %s", filename)
	}
	defer f.Close()

	b, e := ioutil.ReadAll(f)
	if e != nil {
		return nil, errors.Annotatef(e, "reading config %s", filename)
	}

	c := DefaultConfig()
	if e := json.Unmarshal(b, &c); e != nil {
		return nil, errors.Annotatef(e, "parsing config %s", filename)
	}
	if e := c.Validate(); e != nil {
		return nil, errors.Trace(e)
	}
	return &c, nil
}
