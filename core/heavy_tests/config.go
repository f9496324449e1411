package heavy_tests

// Ground truth for the synthetic recovery test: a 3x3 pixel grid of 9
// terms and 6 topics, each topic a horizontal or vertical bar putting
// equal mass on 3 terms.
var (
	groundTruthModel = [][]float64{
		{1, 1, 1, 0, 0, 0, 0, 0, 0}, // 0*
		{0, 0, 0, 1, 1, 1, 0, 0, 0}, // 1*
		{0, 0, 0, 0, 0, 0, 1, 1, 1}, // 2*
		{1, 0, 0, 1, 0, 0, 1, 0, 0}, // *0
		{0, 1, 0, 0, 1, 0, 0, 1, 0}, // *1
		{0, 0, 1, 0, 0, 1, 0, 0, 1}, // *2
	}
	groundTruthK = len(groundTruthModel)
	groundTruthV = len(groundTruthModel[0])
)

const (
	kDocLen  = 21
	kNumDocs = 600
	kPasses  = 8

	// Shapes of the synthetic model used by the benchmarks; one
	// author per document, so the corpus has kBenchAuthors documents.
	kBenchTopics  = 50
	kBenchTerms   = 2000
	kBenchAuthors = 100
	kBenchDocs    = kBenchAuthors
	kBenchDocLen  = 10
)
