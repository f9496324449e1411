// print_model shows a trained model in human readable format.  It can
// output either a text file, or runs as a Web server and presents
// HTML format, depending on if -html is set.  To make the printed
// model readable, you can specify a translation file in addition to
// the vocabulary file.  For more details about translation, please
// refer to github.com/latentlab/quill/core/utils.
package main

import (
	"flag"
	"html/template"
	"net/http"
	"os"

	log "github.com/golang/glog"

	"github.com/latentlab/quill/core/utils"
)

func main() {
	flagModel := flag.String("model", "", "The binary format model file")
	flagVocab := flag.String("vocab", "", "The vocabulary file")
	flagTrans := flag.String("trans", "", "The token translation file")
	flagAuthors := flag.String("authors", "", "The authorship file, for author names")
	flagMaxTermsPerTopic := flag.Int("len", 50, "Max # terms shown per topic")
	flagMinProbability := flag.Float64("min_probability", -1,
		"Author topic cutoff; negative means the model default")
	flagHtml := flag.String("html", "", "Display HTML instead generating file")
	flag.Parse()
	defer log.Flush()

	v := utils.LoadVocabOrDie(*flagVocab)
	if len(*flagTrans) > 0 {
		v = utils.TranslatedVocab(v,
			utils.LoadTranslationOrDie(*flagTrans))
	}
	m := utils.LoadModelOrDie(*flagModel)
	if len(*flagAuthors) > 0 {
		if e := m.BindAuthorship(utils.LoadAuthorshipOrDie(*flagAuthors, -1)); e != nil {
			log.Fatalf("Cannot bind authorship: %v", e)
		}
	}

	if len(*flagHtml) == 0 {
		m.PrintTopics(os.Stdout, v, *flagMaxTermsPerTopic)
		m.PrintAuthorTopics(os.Stdout, *flagMinProbability)
		return
	}

	tmpl, e := template.New("topics").Parse(kTopicDescTemplate)
	if e != nil {
		log.Fatal("Cannot parse template topics from kTopicDescTemplate.")
	}

	descs := utils.DescribeTopics(m, v, *flagMaxTermsPerTopic)
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if e := tmpl.Execute(w, descs); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
			log.Errorf("Cannot execute HTML template: %v", e)
			return
		}
	})

	log.Infof("Listening on %s", *flagHtml)
	if e := http.ListenAndServe(*flagHtml, nil); e != nil {
		log.Fatalf("ListenAndServe failed: %v", e)
	}
}

const (
	kTopicDescTemplate = `<html>
<body style="background-color: #CFEDFB">
  <table>
    <thead style="background-color: #046293; color: white;">
      <tr>
        <td>ID</td>
        <td>Weight</td>
        <td colspan=100>Terms</td>
      </tr>
    </thead>
    <tbody style="background-color: #046293; color: white;">
    {{range .}}
      <tr>
        <td>{{.Id}}</td>
        <td>{{printf "%.1f" .Weight}}</td>
        {{range .Tokens}}
          <td style="background-color: #BFEFFF;">{{.Word}}</td>
          <td style="background-color: #00A0DC; color: white;">{{printf "%.4f" .Prob}}</td>
        {{end}}
      </tr>
    {{end}}
    </tbody>
  </body>
</html>
`
)
