package corpus

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Authorship holds the author-document incidence of a corpus in both
// directions: AuthorDocs[a] lists the documents written by author a,
// and DocAuthors[d] lists the authors of document d.  Author ids are
// dense in [0, NumAuthors()) and index rows of the author-topic
// matrix; document ids are positions in the corpus.  All lists are
// sorted and free of duplicates.
type Authorship struct {
	Names      []string
	AuthorDocs [][]int32
	DocAuthors [][]int32

	ids map[string]int
}

// NewAuthorship builds an Authorship over numDocs documents.  Exactly
// one of authorDocs and docAuthors may be nil; the missing direction
// is derived by inverting the other.  Every document must end up with
// at least one author.  names is optional; when given it must have
// one entry per author.
func NewAuthorship(names []string, authorDocs, docAuthors [][]int32, numDocs int) (*Authorship, error) {
	if numDocs < 0 {
		return nil, errors.Errorf("numDocs = %d, must not be negative", numDocs)
	}
	if authorDocs == nil && docAuthors == nil {
		return nil, errors.New("at least one of authorDocs/docAuthors must be given")
	}
	if docAuthors != nil && len(docAuthors) != numDocs {
		return nil, errors.Errorf("len(docAuthors) = %d, want numDocs = %d", len(docAuthors), numDocs)
	}

	if authorDocs != nil {
		authorDocs = sortDedupe(authorDocs)
		for a, ds := range authorDocs {
			for _, d := range ds {
				if d < 0 || int(d) >= numDocs {
					return nil, errors.Errorf("author %d: document id %d out of range [0, %d)", a, d, numDocs)
				}
			}
		}
	}
	if docAuthors != nil {
		docAuthors = sortDedupe(docAuthors)
		numAuthors := len(authorDocs)
		if authorDocs == nil {
			for _, as := range docAuthors {
				for _, a := range as {
					if int(a)+1 > numAuthors {
						numAuthors = int(a) + 1
					}
				}
			}
			if len(names) > numAuthors {
				numAuthors = len(names)
			}
		}
		for d, as := range docAuthors {
			for _, a := range as {
				if a < 0 || int(a) >= numAuthors {
					return nil, errors.Errorf("document %d: author id %d out of range [0, %d)", d, a, numAuthors)
				}
			}
		}
		if authorDocs == nil {
			authorDocs = invert(docAuthors, numAuthors)
		}
	} else {
		docAuthors = invert(authorDocs, numDocs)
	}

	for d, as := range docAuthors {
		if len(as) == 0 {
			return nil, errors.Errorf("document %d has no authors", d)
		}
	}
	if names != nil && len(names) != len(authorDocs) {
		return nil, errors.Errorf("%d author names for %d authors", len(names), len(authorDocs))
	}

	return &Authorship{Names: names, AuthorDocs: authorDocs, DocAuthors: docAuthors}, nil
}

// invert turns a list-of-lists mapping i -> {j} into j -> {i}.  The
// result lists are sorted because i ascends during construction.
func invert(src [][]int32, n int) [][]int32 {
	dst := make([][]int32, n)
	for i := range dst {
		dst[i] = make([]int32, 0)
	}
	for i, lst := range src {
		for _, j := range lst {
			dst[j] = append(dst[j], int32(i))
		}
	}
	return dst
}

func sortDedupe(lists [][]int32) [][]int32 {
	out := make([][]int32, len(lists))
	for i, lst := range lists {
		s := make([]int32, len(lst))
		copy(s, lst)
		sort.Slice(s, func(a, b int) bool { return s[a] < s[b] })
		out[i] = s[:0]
		for j, x := range s {
			if j == 0 || x != s[j-1] {
				out[i] = append(out[i], x)
			}
		}
	}
	return out
}

func (a *Authorship) NumAuthors() int {
	return len(a.AuthorDocs)
}

func (a *Authorship) NumDocs() int {
	return len(a.DocAuthors)
}

// DocCount returns how many documents author wrote.  This count
// scales the author's sufficient statistics during inference.
func (a *Authorship) DocCount(author int32) int {
	if int(author) < 0 || int(author) >= len(a.AuthorDocs) {
		panic(fmt.Sprintf("author=%d out of range [0, %d)", author, len(a.AuthorDocs)))
	}
	return len(a.AuthorDocs[author])
}

// Name returns the display name of an author, falling back to the
// decimal id when no names were supplied.
func (a *Authorship) Name(author int32) string {
	if int(author) < 0 || int(author) >= len(a.AuthorDocs) {
		panic(fmt.Sprintf("author=%d out of range [0, %d)", author, len(a.AuthorDocs)))
	}
	if a.Names == nil {
		return strconv.Itoa(int(author))
	}
	return a.Names[author]
}

// Id returns the author id for a display name, or a negative value
// if the name is unknown.
func (a *Authorship) Id(name string) int32 {
	if a.ids == nil {
		a.ids = make(map[string]int)
		for i, n := range a.Names {
			if _, dup := a.ids[n]; !dup {
				a.ids[n] = i
			}
		}
	}
	if id, ok := a.ids[name]; ok {
		return int32(id)
	}
	return -1
}

// LoadAuthorship reads an authorship file: one author per line, the
// author's name followed by the ids of the documents they wrote,
// whitespace-separated.  The line order assigns author ids.  A
// negative numDocs derives the document count from the largest id in
// the file, which suits tools that have no corpus at hand.
func LoadAuthorship(r io.Reader, numDocs int) (*Authorship, error) {
	var names []string
	var authorDocs [][]int32
	s := bufio.NewScanner(r)
	for s.Scan() {
		fs := strings.Fields(s.Text())
		if len(fs) == 0 {
			continue
		}
		docs := make([]int32, 0, len(fs)-1)
		for _, f := range fs[1:] {
			d, e := strconv.ParseInt(f, 10, 32)
			if e != nil {
				return nil, errors.Annotatef(e, "author %q", fs[0])
			}
			docs = append(docs, int32(d))
		}
		names = append(names, fs[0])
		authorDocs = append(authorDocs, docs)
	}
	if e := s.Err(); e != nil {
		return nil, errors.Trace(e)
	}
	if numDocs < 0 {
		numDocs = 0
		for _, docs := range authorDocs {
			for _, d := range docs {
				if int(d) >= numDocs {
					numDocs = int(d) + 1
				}
			}
		}
	}
	return NewAuthorship(names, authorDocs, nil, numDocs)
}

// Save writes the authorship in the format LoadAuthorship reads.
// Names must not contain whitespace.
func (a *Authorship) Save(w io.Writer) error {
	for i, docs := range a.AuthorDocs {
		if _, e := fmt.Fprint(w, a.Name(int32(i))); e != nil {
			return e
		}
		for _, d := range docs {
			if _, e := fmt.Fprintf(w, " %d", d); e != nil {
				return e
			}
		}
		if _, e := fmt.Fprintln(w); e != nil {
			return e
		}
	}
	return nil
}
