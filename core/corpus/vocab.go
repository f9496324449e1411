package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Vocabulary maintains the bi-directional mapping between tokens and
// term ids.  Ids are assigned in file order and are in the range
// [0, N), where N is the vocabulary size, so a vocabulary file and a
// bag-of-words corpus built against it stay consistent.
type Vocabulary struct {
	Tokens []string
	ids    map[string]int
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{Tokens: make([]string, 0)}
}

// Load reads one token per line.  Only the first column of each line
// is taken, so frequency-annotated vocabulary files load as-is.
func (v *Vocabulary) Load(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		fs := strings.Fields(scanner.Text())
		if len(fs) > 0 {
			v.Tokens = append(v.Tokens, fs[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	v.buildIdMap()
	return nil
}

// Save writes one token per line, in id order.
func (v *Vocabulary) Save(w io.Writer) error {
	for _, t := range v.Tokens {
		if _, e := fmt.Fprintln(w, t); e != nil {
			return e
		}
	}
	return nil
}

// Add appends token if it is not already present and returns its id.
func (v *Vocabulary) Add(token string) int32 {
	if id := v.Id(token); id >= 0 {
		return id
	}
	v.Tokens = append(v.Tokens, token)
	v.ids[token] = len(v.Tokens) - 1
	return int32(len(v.Tokens) - 1)
}

func (v *Vocabulary) buildIdMap() {
	v.ids = make(map[string]int)
	for i := range v.Tokens {
		if _, dup := v.ids[v.Tokens[i]]; !dup {
			v.ids[v.Tokens[i]] = i
		}
	}
}

func (v *Vocabulary) Len() int {
	return len(v.Tokens)
}

func (v *Vocabulary) Token(id int32) string {
	if int(id) < 0 || int(id) >= len(v.Tokens) {
		panic(fmt.Sprintf("id=%d out of range [0, %d)", id, len(v.Tokens)))
	}
	return v.Tokens[id]
}

// Id returns the id of token, or a negative value if token is not in
// the vocabulary.
func (v *Vocabulary) Id(token string) int32 {
	if v.ids == nil {
		v.buildIdMap()
	}
	if id, ok := v.ids[token]; ok {
		return int32(id)
	}
	return -1
}
