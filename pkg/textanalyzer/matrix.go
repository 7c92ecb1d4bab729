package textanalyzer

import (
	"github.com/tidwall/btree"
)

// Document is one named text of a corpus.
type Document struct {
	Name string
	Text string
}

// MatrixOptions controls which words become columns of a word matrix.
type MatrixOptions struct {
	// MinDocFraction is the smallest share of documents a word must appear in.
	MinDocFraction float64
	// MaxDocFraction is the largest share of documents a word may appear in.
	MaxDocFraction float64
	// SkipStopWords removes English stop words before counting.
	SkipStopWords bool
}

// DefaultMatrixOptions keeps words that appear in 10% to 50% of the documents.
func DefaultMatrixOptions() MatrixOptions {
	return MatrixOptions{
		MinDocFraction: DefaultMinFraction,
		MaxDocFraction: DefaultMaxFraction,
	}
}

// WordMatrix is a document-by-word count table.
type WordMatrix struct {
	RowNames []string
	ColNames []string
	Rows     [][]float64
}

// BuildWordMatrix counts the words of every document and keeps as columns the
// words whose document fraction lies within the configured band. Columns are
// sorted alphabetically; rows follow the order of docs.
func BuildWordMatrix(docs []Document, opts MatrixOptions) *WordMatrix {
	counts := make([]map[string]int, len(docs))
	docFreq := make(map[string]int)

	for i, doc := range docs {
		c, _ := WordCounts(doc.Text)
		if opts.SkipStopWords {
			for w := range c {
				if IsStopWord(w) {
					delete(c, w)
				}
			}
		}
		counts[i] = c
		for w := range c {
			docFreq[w]++
		}
	}

	vocabulary := btree.NewBTreeG[string](func(a, b string) bool { return a < b })
	if len(docs) > 0 {
		n := float64(len(docs))
		for w, df := range docFreq {
			frac := float64(df) / n
			if frac >= opts.MinDocFraction && frac <= opts.MaxDocFraction {
				vocabulary.Set(w)
			}
		}
	}

	m := &WordMatrix{
		RowNames: make([]string, len(docs)),
		ColNames: make([]string, 0, vocabulary.Len()),
		Rows:     make([][]float64, len(docs)),
	}
	vocabulary.Scan(func(w string) bool {
		m.ColNames = append(m.ColNames, w)
		return true
	})

	for i, doc := range docs {
		m.RowNames[i] = doc.Name
		row := make([]float64, len(m.ColNames))
		for j, w := range m.ColNames {
			row[j] = float64(counts[i][w])
		}
		m.Rows[i] = row
	}
	return m
}
