package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/betbot/polyserve/clob/types"
	"github.com/betbot/polyserve/internal/registry"
)

// fakeLister 按调用顺序回放预设响应，记录收到的游标
type fakeLister struct {
	mu      sync.Mutex
	cursors []string
	pages   []pageOrErr
	done    chan struct{} // 响应耗尽时关闭
}

type pageOrErr struct {
	page *types.MarketsPage
	err  error
}

func (f *fakeLister) GetMarketsPage(ctx context.Context, cursor string) (*types.MarketsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors = append(f.cursors, cursor)
	if len(f.pages) == 0 {
		if f.done != nil {
			select {
			case <-f.done:
			default:
				close(f.done)
			}
		}
		return nil, errors.New("no more pages")
	}
	next := f.pages[0]
	f.pages = f.pages[1:]
	return next.page, next.err
}

func (f *fakeLister) seenCursors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.cursors))
	copy(out, f.cursors)
	return out
}

func marketPage(next string, markets ...types.Market) *types.MarketsPage {
	return &types.MarketsPage{Data: markets, NextCursor: next, Count: len(markets)}
}

func TestLoopRegistersEnabledTokens(t *testing.T) {
	lister := &fakeLister{
		done: make(chan struct{}),
		pages: []pageOrErr{
			{page: marketPage(types.CursorEnd,
				types.Market{
					MarketSlug:      "will-x-happen",
					Question:        "Will X happen?",
					Description:     "Resolves yes if X.",
					Tags:            []string{"politics", "us"},
					EnableOrderBook: true,
					Tokens: []types.Token{
						{TokenID: "tok-yes", Outcome: "Yes"},
						{TokenID: "tok-no", Outcome: "No"},
						{TokenID: "", Outcome: "Empty"}, // 空 id 跳过
					},
				},
				types.Market{
					MarketSlug:      "disabled-market",
					EnableOrderBook: false,
					Tokens:          []types.Token{{TokenID: "tok-skip", Outcome: "Yes"}},
				},
			)},
		},
	}

	reg := registry.New()
	loop := NewLoop(lister, reg, Config{RefreshInterval: time.Millisecond, ErrorBackoff: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	select {
	case <-lister.done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not consume pages in time")
	}
	cancel()

	if reg.Len() != 2 {
		t.Fatalf("registered = %d, want 2", reg.Len())
	}
	names := reg.LookupNames([]string{"tok-yes", "tok-no", "tok-skip"})
	if names[0] == nil || *names[0] != "will-x-happen/Yes" {
		t.Fatalf("tok-yes name = %v", names[0])
	}
	if names[1] == nil || *names[1] != "will-x-happen/No" {
		t.Fatalf("tok-no name = %v", names[1])
	}
	if names[2] != nil {
		t.Fatalf("disabled market token registered: %v", *names[2])
	}

	// 关键词文本包含 tags、描述和问题
	if got := reg.Search("politics", 10); len(got) != 2 {
		t.Fatalf("tag search = %v, want both outcome tokens", got)
	}
}

func TestLoopAdvancesCursorImmediately(t *testing.T) {
	lister := &fakeLister{
		done: make(chan struct{}),
		pages: []pageOrErr{
			{page: marketPage("cursor-2")},
			{page: marketPage("cursor-3")},
			{page: marketPage(types.CursorEnd)},
		},
	}

	reg := registry.New()
	loop := NewLoop(lister, reg, Config{InitialCursor: "cursor-1", RefreshInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	deadline := time.After(2 * time.Second)
	for {
		if len(lister.seenCursors()) >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("cursors seen: %v", lister.seenCursors())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	got := lister.seenCursors()[:3]
	want := []string{"cursor-1", "cursor-2", "cursor-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cursors = %v, want %v", got, want)
		}
	}
}

// 哨兵之后必须退避并用最后一个非哨兵游标重新轮询，而不是从头开始
func TestLoopSentinelRepollsPreviousCursor(t *testing.T) {
	lister := &fakeLister{
		done: make(chan struct{}),
		pages: []pageOrErr{
			{page: marketPage("cursor-2")},
			{page: marketPage(types.CursorEnd)}, // cursor-2 的响应：到达末尾
			{page: marketPage(types.CursorEnd)}, // 退避后的重询也应带 cursor-2
		},
	}

	reg := registry.New()
	loop := NewLoop(lister, reg, Config{
		InitialCursor:   "cursor-1",
		RefreshInterval: 5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	deadline := time.After(2 * time.Second)
	for {
		if len(lister.seenCursors()) >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("cursors seen: %v", lister.seenCursors())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	got := lister.seenCursors()[:3]
	want := []string{"cursor-1", "cursor-2", "cursor-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cursors = %v, want %v", got, want)
		}
	}
}

// 单页拉取失败不终止循环，退避后重试同一游标
func TestLoopRetriesAfterTransportError(t *testing.T) {
	lister := &fakeLister{
		done: make(chan struct{}),
		pages: []pageOrErr{
			{err: errors.New("connection refused")},
			{page: marketPage(types.CursorEnd,
				types.Market{
					MarketSlug:      "m",
					EnableOrderBook: true,
					Tokens:          []types.Token{{TokenID: "tok-1", Outcome: "Yes"}},
				},
			)},
		},
	}

	reg := registry.New()
	loop := NewLoop(lister, reg, Config{
		InitialCursor:   "cursor-1",
		RefreshInterval: time.Hour,
		ErrorBackoff:    time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	deadline := time.After(2 * time.Second)
	for reg.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("loop did not recover from transport error")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	got := lister.seenCursors()
	if len(got) < 2 || got[0] != "cursor-1" || got[1] != "cursor-1" {
		t.Fatalf("cursors = %v, want retry with same cursor", got)
	}
}
