package category

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	primaryWeight    = 10
	multiWordWeight  = 3
	singleWordWeight = 1
	exactBonus       = 5
)

var classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bakai",
	Subsystem: "category",
	Name:      "classifications_total",
	Help:      "Classified queries by winning category",
}, []string{"category"})

// Score is one category's result for a query.
type Score struct {
	Category        Category `json:"category"`
	Name            string   `json:"name"`
	Priority        int      `json:"priority"`
	RawScore        int      `json:"raw_score"`
	WeightedScore   float64  `json:"weighted_score"`
	MatchedPatterns []string `json:"matched_patterns"`
}

// Classify picks the best-scoring category for query. ok is false when no
// pattern matched; callers then use General.
func Classify(query string) (Score, bool) {
	scores := Analyze(query)
	if len(scores) == 0 {
		return Score{Category: General}, false
	}
	return scores[0], true
}

// Analyze scores every category with at least one matching pattern, best
// first.
func Analyze(query string) []Score {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var scores []Score
	for i := range table {
		if s, ok := table[i].score(q); ok {
			scores = append(scores, s)
		}
	}
	rank(scores)
	return scores
}

// rank orders scores by weighted score, then priority, then table position.
func rank(scores []Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.WeightedScore != b.WeightedScore {
			return a.WeightedScore > b.WeightedScore
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return position(a.Category) < position(b.Category)
	})
}

// score sums pattern weights over a lower-cased, trimmed query.
func (d *definition) score(q string) (Score, bool) {
	raw := 0
	var matched []string
	for _, p := range d.patterns {
		if !strings.Contains(q, p) {
			continue
		}
		w := singleWordWeight
		if _, ok := d.primary[p]; ok {
			w = primaryWeight
		} else if strings.Contains(p, " ") {
			w = multiWordWeight
		}
		if p == q {
			w += exactBonus
		}
		raw += w
		matched = append(matched, p)
	}
	if raw == 0 {
		return Score{}, false
	}
	return Score{
		Category:        d.category,
		Name:            d.name,
		Priority:        d.priority,
		RawScore:        raw,
		WeightedScore:   float64(raw) * float64(d.priority) / 100,
		MatchedPatterns: matched,
	}, true
}

// Result is what link consumers receive for a query.
type Result struct {
	Category        Category `json:"category"`
	Resolved        bool     `json:"resolved"`
	WeightedScore   float64  `json:"weighted_score"`
	MatchedPatterns []string `json:"matched_patterns"`
	URL             string   `json:"url"`
	LinkSource      string   `json:"link_source"`
}

// Classifier wraps Classify with a result cache and link selection.
type Classifier struct {
	links  *Links
	cache  *lru.Cache
	logger *zap.Logger
}

// NewClassifier creates a Classifier. A cacheSize of zero disables caching.
func NewClassifier(links *Links, cacheSize int, logger *zap.Logger) (*Classifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if links == nil {
		links = NewLinks(nil)
	}
	c := &Classifier{links: links, logger: logger}
	if cacheSize > 0 {
		cache, err := lru.New(cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create classification cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Links returns the link table the classifier routes to.
func (c *Classifier) Links() *Links {
	return c.links
}

// Classify returns the winning category for query without link selection.
func (c *Classifier) Classify(query string) (Score, bool) {
	key := strings.ToLower(strings.TrimSpace(query))
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			cached := v.(cachedScore)
			classificationsTotal.WithLabelValues(string(cached.score.Category)).Inc()
			return cached.score.clone(), cached.ok
		}
	}

	score, ok := Classify(key)
	if c.cache != nil {
		c.cache.Add(key, cachedScore{score: score.clone(), ok: ok})
	}
	classificationsTotal.WithLabelValues(string(score.Category)).Inc()
	c.logger.Debug("Classified query",
		zap.String("category", string(score.Category)),
		zap.Float64("weighted_score", score.WeightedScore),
		zap.Strings("matched", score.MatchedPatterns))
	return score, ok
}

// Route classifies query and selects the outbound link. docs are the
// metadata maps of the documents retrieved for the query.
func (c *Classifier) Route(query string, docs []map[string]string) Result {
	score, ok := c.Classify(query)
	res := Result{
		Category:        score.Category,
		Resolved:        ok,
		WeightedScore:   score.WeightedScore,
		MatchedPatterns: score.MatchedPatterns,
	}
	return c.links.Relevant(query, res, docs)
}

// Analysis pairs a category score with its configured link.
type Analysis struct {
	Score
	URL string `json:"url"`
}

// Analyze returns every scoring category with its link.
func (c *Classifier) Analyze(query string) []Analysis {
	scores := Analyze(query)
	out := make([]Analysis, 0, len(scores))
	for _, s := range scores {
		out = append(out, Analysis{Score: s, URL: c.links.For(s.Category)})
	}
	return out
}

type cachedScore struct {
	score Score
	ok    bool
}

func (s Score) clone() Score {
	if s.MatchedPatterns != nil {
		s.MatchedPatterns = append([]string(nil), s.MatchedPatterns...)
	}
	return s
}
