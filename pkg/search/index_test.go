package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/scout/pkg/vector"
)

var corpus = []string{
	"Senior Python Engineer building data pipelines with Python and Spark",
	"Data Scientist machine learning models in Python",
	"Frontend Engineer React TypeScript user interfaces",
	"Backend Engineer Go microservices and Postgres",
	"Registered Nurse patient care in a hospital",
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		text string
		opts Options
		want []string
	}{
		{"stop words and case", "The Python and the Go", Options{MinTokenLen: 2}, []string{"python", "go"}},
		{"short tokens", "C is a language", Options{MinTokenLen: 2}, []string{"language"}},
		{"punctuation", "node.js/react-native", Options{MinTokenLen: 2}, []string{"node", "js", "react", "native"}},
		{"bigrams", "machine learning engineer", Options{MinTokenLen: 2, Bigrams: true},
			[]string{"machine", "learning", "engineer", "machine learning", "learning engineer"}},
		{"empty", "  ,,  ", Options{MinTokenLen: 2, Bigrams: true}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyze(tt.text, tt.opts)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildDropsCommonTerms(t *testing.T) {
	idx := Build(corpus, DefaultOptions())
	require.Equal(t, len(corpus), idx.Len())

	// "engineer" is in 3 of 5 documents (60%) and survives; a term in every
	// document would not.
	assert.True(t, idx.Known("engineer"))

	common := Build([]string{"shared alpha", "shared beta", "shared gamma"}, DefaultOptions())
	assert.False(t, common.Known("shared"))
	assert.True(t, common.Known("alpha"))
}

func TestDocumentVectorsAreUnitLength(t *testing.T) {
	idx := Build(corpus, DefaultOptions())
	for i := 0; i < idx.Len(); i++ {
		assert.InDelta(t, 1, vector.Magnitude(idx.Doc(i)), 1e-9, "doc %d", i)
	}
}

func TestScoresMatchCosine(t *testing.T) {
	idx := Build(corpus, DefaultOptions())
	q := idx.Vectorize("python data")
	require.Positive(t, q.Len())

	scores := idx.Scores(q)
	for i, s := range scores {
		want := vector.CosineSimilarity(q, idx.Doc(i))
		if math.Abs(s-want) > 1e-9 {
			t.Errorf("doc %d: expected %v, got %v", i, want, s)
		}
	}
}

func TestSearch(t *testing.T) {
	idx := Build(corpus, DefaultOptions())

	got := idx.Search("python", 10)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []int{0, 1}, []int{got[0].ID, got[1].ID})
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)

	assert.Empty(t, idx.Search("underwater basket weaving", 10))
	assert.Empty(t, idx.Search("", 10))

	nurse := idx.Search("hospital nurse", 1)
	require.Len(t, nurse, 1)
	assert.Equal(t, 4, nurse[0].ID)
}

func TestSimilarExcludesSelf(t *testing.T) {
	idx := Build(corpus, DefaultOptions())
	got := idx.Similar(0, 3)
	require.NotEmpty(t, got)
	for _, n := range got {
		assert.NotEqual(t, 0, n.ID)
		assert.LessOrEqual(t, n.Score, 1+1e-9)
	}
	assert.Equal(t, 1, got[0].ID, "the other python job is closest")
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.Error(t, Options{MaxDF: 0, MinTokenLen: 2}.Validate())
	assert.Error(t, Options{MaxDF: 0.5, MinTokenLen: 0}.Validate())
}
