package category

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	apperrors "bakai-assistant/errors"
)

const (
	LinkFromDocument = "document"
	LinkFromCategory = "category"
	LinkFromGeneral  = "general"
)

// urlFragments maps a URL path fragment to the query stems that make a
// document URL containing it relevant. Checked in order.
var urlFragments = []struct {
	fragment string
	stems    []string
}{
	{"card", []string{"карт", "visa", "mastercard", "элкарт"}},
	{"credit", []string{"кредит", "займ", "ипотек"}},
	{"deposit", []string{"депозит", "вклад", "накопитель"}},
	{"business", []string{"бизнес", "корпоратив", "предпринимател"}},
	{"office", []string{"офис", "филиал", "адрес"}},
	{"insurance", []string{"страхов", "полис"}},
	{"transfer", []string{"перевод", "платеж"}},
	{"exchange", []string{"валют", "курс", "обмен"}},
}

// Links maps categories to configured URLs.
type Links struct {
	urls map[Category]string
}

// NewLinks builds a link table from a category name to URL map. The
// "general" key is the fallback for everything else.
func NewLinks(m map[string]string) *Links {
	urls := make(map[Category]string, len(m))
	for k, v := range m {
		urls[Category(strings.ToLower(strings.TrimSpace(k)))] = strings.TrimSpace(v)
	}
	return &Links{urls: urls}
}

// For returns the link for c, or the general link when c has none.
func (l *Links) For(c Category) string {
	if u, ok := l.urls[c]; ok && u != "" {
		return u
	}
	return l.urls[General]
}

// Relevant fills res.URL. A retrieved document whose url attribute is
// relevant to the query wins over the category link.
func (l *Links) Relevant(query string, res Result, docs []map[string]string) Result {
	q := strings.ToLower(query)
	for _, meta := range docs {
		u := strings.TrimSpace(meta["url"])
		if !strings.HasPrefix(u, "http") {
			continue
		}
		if urlRelevant(u, q) {
			res.URL = u
			res.LinkSource = LinkFromDocument
			return res
		}
	}

	if u, ok := l.urls[res.Category]; ok && u != "" && res.Category != General {
		res.URL = u
		res.LinkSource = LinkFromCategory
		return res
	}
	res.URL = l.urls[General]
	res.LinkSource = LinkFromGeneral
	return res
}

func urlRelevant(u, query string) bool {
	lower := strings.ToLower(u)
	for _, f := range urlFragments {
		if !strings.Contains(lower, f.fragment) {
			continue
		}
		for _, stem := range f.stems {
			if strings.Contains(query, stem) {
				return true
			}
		}
	}
	return false
}

// Validate checks that every configured link is an absolute http(s) URL and
// that a general link exists.
func (l *Links) Validate() error {
	var bad []string
	if l.urls[General] == "" {
		bad = append(bad, string(General)+": missing")
	}
	for c, raw := range l.urls {
		if !validURL(raw) {
			bad = append(bad, fmt.Sprintf("%s: %q", c, raw))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "invalid links: %s", strings.Join(bad, ", "))
}

func validURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Entry is one row of the link listing.
type Entry struct {
	Info
	URL string `json:"url"`
}

// List returns every category with its link, in table order.
func (l *Links) List() []Entry {
	infos := All()
	out := make([]Entry, 0, len(infos))
	for _, info := range infos {
		out = append(out, Entry{Info: info, URL: l.For(info.Category)})
	}
	return out
}
