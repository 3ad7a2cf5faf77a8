package rag

import (
	"context"
	"sync"
	"time"
)

// fakeNeighbors is a scripted NeighborService. results is keyed by query text;
// the "" key answers any text without its own script.
type fakeNeighbors struct {
	mu        sync.Mutex
	calls     []string
	topKs     []int
	results   map[string][]Neighbor
	err       error
	delay     time.Duration
	ignoreCtx bool
}

func (f *fakeNeighbors) Search(ctx context.Context, text string, topK int) ([]Neighbor, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.topKs = append(f.topKs, topK)
	f.mu.Unlock()

	if f.delay > 0 {
		if f.ignoreCtx {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.results[text]; ok {
		return res, nil
	}
	return f.results[""], nil
}

func (f *fakeNeighbors) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func sampleEntries() []KnowledgeEntry {
	return []KnowledgeEntry{
		{ID: "faq-card", RawText: "FAQ: Как открыть карту?\nОтвет: Обратитесь в любой филиал с паспортом.", Attributes: map[string]string{"url": "https://bakai.kg/ru/individual/cards/"}},
		{ID: "faq-swift", RawText: "FAQ: Что такое SWIFT перевод?\nОтвет: Международный банковский перевод.", Attributes: map[string]string{"category": "transfers"}},
		{ID: "faq-where", RawText: "FAQ: Где вы?\nОтвет: Головной офис находится в Бишкеке."},
		{ID: "doc-safe", RawText: "Аренда сейфовых ячеек доступна в головном офисе."},
		{ID: "doc-atm", RawText: "Банкоматы работают круглосуточно."},
	}
}
