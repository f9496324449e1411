// explore serves a trained author-topic model for interactive
// browsing.  The index page lists the strongest topics; typing part
// of an author's name shows what that author writes about, each topic
// spelled out by its most probable terms.
/*
  $GOPATH/bin/explore \
    -model=/tmp/model.gz -vocab=./testdata/vocab \
    -authors=./testdata/authors -addr=:6061
*/
package main

import (
	"flag"
	"html/template"
	"net/http"
	"sort"
	"strings"

	log "github.com/golang/glog"

	"github.com/latentlab/quill/core/utils"
)

func main() {
	flagAddr := flag.String("addr", ":6061", "listening address")
	flagModel := flag.String("model", "", "model file")
	flagVocab := flag.String("vocab", "", "vocabulary file")
	flagTrans := flag.String("trans", "", "vocabulary translation file")
	flagAuthors := flag.String("authors", "", "authorship file")
	flagMaxTermsPerTopic := flag.Int("len", 10, "Max # terms shown per topic")
	flagMinProbability := flag.Float64("min_probability", -1,
		"Author topic cutoff; negative means the model default")
	flag.Parse()
	defer log.Flush()

	m := utils.LoadModelOrDie(*flagModel)
	v := utils.LoadVocabOrDie(*flagVocab)
	if len(*flagTrans) > 0 {
		v = utils.TranslatedVocab(v,
			utils.LoadTranslationOrDie(*flagTrans))
	}
	if len(*flagAuthors) > 0 {
		if e := m.BindAuthorship(utils.LoadAuthorshipOrDie(*flagAuthors, -1)); e != nil {
			log.Fatalf("Cannot bind authorship: %v", e)
		}
	}

	descs := utils.DescribeTopics(m, v, *flagMaxTermsPerTopic)
	authors := utils.DescribeAuthors(m, *flagMinProbability)

	http.HandleFunc("/", MakeSafe(NewHandler(authors, descs)))
	log.Infof("Listening on %s", *flagAddr)
	if e := http.ListenAndServe(*flagAddr, nil); e != nil {
		log.Fatalf("ListenAndServe failed: %v", e)
	}
}

func MakeSafe(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if e, ok := recover().(error); ok {
				http.Error(w, e.Error(), http.StatusInternalServerError)
				log.Errorf("panic: %v", e)
			}
		}()
		h(w, r)
	}
}

func NewHandler(authors []*utils.AuthorDesc,
	descs []*utils.TopicDesc) http.HandlerFunc {
	tmpl, e := template.New("explore").Parse(kTemplate)
	if e != nil {
		log.Fatal("Cannot parse template explore from kTemplate.")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var data []Row

		if q := strings.ToLower(r.FormValue("q")); len(q) > 0 {
			matched := 0
			for _, a := range authors {
				if !strings.Contains(strings.ToLower(a.Name), q) {
					continue
				}
				if matched++; matched > kMaxAuthorsShown {
					break
				}

				topics := make([]Row, 0, len(a.Topics))
				for _, t := range a.Topics {
					topics = append(topics,
						Row{Author: a.Name, Weight: t.Prob, Desc: descs[t.Topic]})
				}
				// Strongest topic of the author first.
				sort.Slice(topics, func(i, j int) bool {
					return topics[i].Weight > topics[j].Weight
				})
				data = append(data, topics...)
			}
		}

		if e := tmpl.Execute(w, data); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
			log.Error("Cannot execute HTML template.")
			return
		}
	}
}

type Row struct {
	Author string
	Weight float64
	Desc   *utils.TopicDesc
}

const (
	kTemplate = `<html>
  <head>
    <style type="text/css">
      td {font-family:Courier 10px;}
    </style>
  </head>
  <body style="background-color: #B0E2FF;">
    <form name="input" action="/" method="get" >
      <input type="textarea" name="q" size=80>
      <input type="submit" value="Explore"></input>
    </form>
    <table>
      <thead style="border: 1px; background-color: #0198E1; color: yellow;">
        <tr>
          <td>Author</td>
          <td>P(topic|author)</td>
          <td colspan=100>P(term|topic)</td>
        </tr>
      </thead>
      <tbody style="background-color: #BFEFFF; border: 1px;">
        {{range .}}
        <tr>
          <td>{{.Author}}</td>
          <td>{{printf "%.4f" .Weight}}</td>
          {{with .Desc}}
          {{range .Tokens}}
          <td>{{.Word}}</td>
          <td>{{printf "%.4f" .Prob}}</td>
          {{end}}
          {{end}}
        </tr>
      {{end}}
      </tbody>
    </table>
  </body>
</html>
`
	kMaxAuthorsShown = 50
)
