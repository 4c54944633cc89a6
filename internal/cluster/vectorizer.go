package cluster

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Vectorizer configuration defaults, mirroring the batch limits the
// rest of the pipeline was tuned against.
const (
	DefaultMaxFeatures = 1000
	DefaultMinDF       = 2
	DefaultMaxDF       = 0.8
	DefaultNGramMin    = 1
	DefaultNGramMax    = 2
)

// vocabTokenPattern restricts vocabulary terms to letter-led words of
// at least three characters.
var vocabTokenPattern = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9]{2,}\b`)

// structuralFeatureNames are the names of the scaled numeric columns
// appended after the TF-IDF block, in column order.
var structuralFeatureNames = []string{
	"subject_length",
	"body_length",
	"token_count",
	"has_attachments",
	"is_newsletter",
	"is_notification",
	"is_promotional",
	"sender_domain_category",
}

// VectorizerConfig holds the tunable knobs of the TF-IDF stage.
type VectorizerConfig struct {
	// MaxFeatures caps the vocabulary size.
	MaxFeatures int
	// MinDF is the minimum number of documents a term must appear in.
	MinDF int
	// MaxDF is the maximum fraction of documents a term may appear in.
	MaxDF float64
	// NGramMin and NGramMax bound the n-gram sizes included in the
	// vocabulary.
	NGramMin int
	NGramMax int
}

// withDefaults fills zero-valued knobs with the package defaults.
func (c VectorizerConfig) withDefaults() VectorizerConfig {
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = DefaultMaxFeatures
	}
	if c.MinDF <= 0 {
		c.MinDF = DefaultMinDF
	}
	if c.MaxDF <= 0 {
		c.MaxDF = DefaultMaxDF
	}
	if c.NGramMin <= 0 {
		c.NGramMin = DefaultNGramMin
	}
	if c.NGramMax < c.NGramMin {
		c.NGramMax = DefaultNGramMax
	}
	return c
}

// Vectorizer converts processed emails into numeric feature vectors.
// It carries no fitted state: FitTransform learns the vocabulary and
// scaling parameters for a batch and returns them as a
// FittedVectorizer, so transforming before fitting is impossible by
// construction.
type Vectorizer struct {
	cfg       VectorizerConfig
	stopWords map[string]struct{}
}

// FittedVectorizer is the immutable result of fitting a Vectorizer to
// one batch. It must be reused to transform any further emails within
// the same session so vectors stay comparable.
type FittedVectorizer struct {
	cfg   VectorizerConfig
	terms []string
	vocab map[string]int
	idf   []float64
	means []float64
	stds  []float64
}

// NewVectorizer creates a Vectorizer, filling unset config fields
// with defaults.
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	stops := make(map[string]struct{}, len(englishStopWords))
	for _, w := range englishStopWords {
		stops[w] = struct{}{}
	}
	return &Vectorizer{cfg: cfg.withDefaults(), stopWords: stops}
}

// FitTransform learns a vocabulary and scaler from the batch and
// returns the combined TF-IDF + structural feature matrix together
// with the gmail ids parallel to its rows. On degenerate input (empty
// batch, or no term survives the frequency filters) the matrix is
// empty and fitted is nil; the caller must treat an empty matrix as
// "no clustering possible".
func (v *Vectorizer) FitTransform(emails []ProcessedEmail) (fitted *FittedVectorizer, matrix [][]float64, ids []string) {
	if len(emails) == 0 {
		return nil, nil, nil
	}

	docs := make([][]string, len(emails))
	ids = make([]string, len(emails))
	for i, e := range emails {
		docs[i] = v.ngrams(compositeText(e))
		ids[i] = e.GmailID
	}

	terms, vocab, idf := v.fitVocabulary(docs)
	if len(terms) == 0 {
		return nil, nil, ids
	}

	structural := structuralFeatures(emails)
	means, stds := fitScaler(structural)

	fitted = &FittedVectorizer{
		cfg:   v.cfg,
		terms: terms,
		vocab: vocab,
		idf:   idf,
		means: means,
		stds:  stds,
	}

	matrix = make([][]float64, len(emails))
	for i := range emails {
		matrix[i] = fitted.vector(docs[i], structural[i])
	}

	return fitted, matrix, ids
}

// Transform vectorizes new emails with the vocabulary and scaler
// learned at fit time.
func (f *FittedVectorizer) Transform(emails []ProcessedEmail) (matrix [][]float64, ids []string) {
	if len(emails) == 0 {
		return nil, nil
	}

	v := NewVectorizer(f.cfg)
	matrix = make([][]float64, len(emails))
	ids = make([]string, len(emails))
	structural := structuralFeatures(emails)
	for i, e := range emails {
		matrix[i] = f.vector(v.ngrams(compositeText(e)), structural[i])
		ids[i] = e.GmailID
	}
	return matrix, ids
}

// FeatureNames returns the names of all columns: vocabulary terms
// followed by the structural feature names.
func (f *FittedVectorizer) FeatureNames() []string {
	names := make([]string, 0, len(f.terms)+len(structuralFeatureNames))
	names = append(names, f.terms...)
	names = append(names, structuralFeatureNames...)
	return names
}

// VocabularySize returns the number of TF-IDF terms.
func (f *FittedVectorizer) VocabularySize() int {
	return len(f.terms)
}

// TopFeaturesForCluster returns up to topN feature names ranked by
// mean weight across the given cluster rows, keeping only features
// whose mean weight exceeds 0.01.
func (f *FittedVectorizer) TopFeaturesForCluster(vectors [][]float64, topN int) []string {
	if len(vectors) == 0 || topN <= 0 {
		return nil
	}

	cols := len(vectors[0])
	means := make([]float64, cols)
	for _, row := range vectors {
		floats.Add(means, row)
	}
	floats.Scale(1/float64(len(vectors)), means)

	idx := make([]int, cols)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return means[idx[a]] > means[idx[b]] })

	names := f.FeatureNames()
	var top []string
	for _, i := range idx {
		if len(top) == topN {
			break
		}
		if means[i] <= 0.01 || i >= len(names) {
			continue
		}
		top = append(top, names[i])
	}
	return top
}

// compositeText builds the weighted text the TF-IDF vocabulary is
// learned from: subject three times, sender domain twice, then the
// cleaned combined text, with literal type markers appended for each
// set boolean signal.
func compositeText(e ProcessedEmail) string {
	var sb strings.Builder
	for range 3 {
		sb.WriteString(e.CleanedSubject)
		sb.WriteString(" ")
	}
	for range 2 {
		sb.WriteString(e.SenderDomain)
		sb.WriteString(" ")
	}
	sb.WriteString(e.CombinedText)

	if e.IsNewsletter {
		sb.WriteString(" newsletter_type")
	}
	if e.IsNotification {
		sb.WriteString(" notification_type")
	}
	if e.IsPromotional {
		sb.WriteString(" promotional_type")
	}

	return strings.TrimSpace(sb.String())
}

// ngrams tokenizes a composite string and expands it into the
// configured n-gram range. Stop words are removed before n-grams are
// formed.
func (v *Vectorizer) ngrams(text string) []string {
	raw := vocabTokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := v.stopWords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}

	var grams []string
	for n := v.cfg.NGramMin; n <= v.cfg.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// fitVocabulary applies the document frequency filters and the
// vocabulary cap, returning the selected terms in stable alphabetical
// order along with smoothed IDF values.
func (v *Vectorizer) fitVocabulary(docs [][]string) ([]string, map[string]int, []float64) {
	df := make(map[string]int)
	tf := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range doc {
			tf[term]++
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := len(docs)
	maxDF := v.cfg.MaxDF * float64(n)
	minDF := v.cfg.MinDF
	// min_df must not exclude everything on tiny batches
	if minDF > n {
		minDF = n
	}

	candidates := make([]string, 0, len(df))
	for term, d := range df {
		if d < minDF || float64(d) > maxDF {
			continue
		}
		candidates = append(candidates, term)
	}
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	// Cap by corpus frequency, ties broken alphabetically, then index
	// the surviving terms in alphabetical order.
	sort.Slice(candidates, func(a, b int) bool {
		if tf[candidates[a]] != tf[candidates[b]] {
			return tf[candidates[a]] > tf[candidates[b]]
		}
		return candidates[a] < candidates[b]
	})
	if len(candidates) > v.cfg.MaxFeatures {
		candidates = candidates[:v.cfg.MaxFeatures]
	}
	sort.Strings(candidates)

	vocab := make(map[string]int, len(candidates))
	idf := make([]float64, len(candidates))
	for i, term := range candidates {
		vocab[term] = i
		idf[i] = smoothedIDF(n, df[term])
	}
	return candidates, vocab, idf
}

// vector builds one feature row: L2-normalized TF-IDF weights
// followed by the standardized structural columns.
func (f *FittedVectorizer) vector(doc []string, structural []float64) []float64 {
	row := make([]float64, len(f.terms)+len(structural))

	counts := make(map[int]float64)
	for _, term := range doc {
		if i, ok := f.vocab[term]; ok {
			counts[i]++
		}
	}
	for i, c := range counts {
		row[i] = c * f.idf[i]
	}
	if norm := floats.Norm(row[:len(f.terms)], 2); norm > 0 {
		floats.Scale(1/norm, row[:len(f.terms)])
	}

	for j, val := range structural {
		row[len(f.terms)+j] = (val - f.means[j]) / f.stds[j]
	}
	return row
}

// structuralFeatures extracts the raw (unscaled) numeric columns for
// each email.
func structuralFeatures(emails []ProcessedEmail) [][]float64 {
	out := make([][]float64, len(emails))
	for i, e := range emails {
		out[i] = []float64{
			float64(e.SubjectLength),
			float64(e.BodyLength),
			float64(e.TokenCount),
			boolToFloat(e.HasAttachments),
			boolToFloat(e.IsNewsletter),
			boolToFloat(e.IsNotification),
			boolToFloat(e.IsPromotional),
			encodeSenderDomain(e.SenderDomain),
		}
	}
	return out
}

// fitScaler computes per-column mean and standard deviation for
// standardization. Constant columns scale by 1 so they standardize to
// zero instead of dividing by zero.
func fitScaler(rows [][]float64) (means, stds []float64) {
	cols := len(rows[0])
	means = make([]float64, cols)
	stds = make([]float64, cols)
	col := make([]float64, len(rows))
	for j := 0; j < cols; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		m, s := stat.MeanStdDev(col, nil)
		means[j] = m
		if s == 0 || len(rows) < 2 {
			s = 1
		}
		stds[j] = s
	}
	return means, stds
}

func smoothedIDF(nDocs, df int) float64 {
	return math.Log((1.0+float64(nDocs))/(1.0+float64(df))) + 1.0
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
