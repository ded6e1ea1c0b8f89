package groups

import (
	"errors"
	"testing"
)

func TestSetAndGet(t *testing.T) {
	s := NewStore()
	name := s.Set("watch", []string{"tok-1", "tok-2"})
	if name != "watch" {
		t.Fatalf("name = %q, want watch", name)
	}

	g, err := s.Get("watch")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(g.Assets) != 2 {
		t.Fatalf("assets = %v", g.Assets)
	}
	if g.Selected != "tok-1" {
		t.Fatalf("selected = %q, want first asset", g.Selected)
	}
}

func TestSetAutoName(t *testing.T) {
	s := NewStore()
	first := s.Set("", []string{"tok-1"})
	second := s.Set("", []string{"tok-2"})
	if first != "0" || second != "1" {
		t.Fatalf("auto names = %q, %q, want counter values", first, second)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := NewStore()
	s.Set("g", []string{"tok-1", "tok-2"})
	s.Set("g", []string{"tok-3"})

	g, err := s.Get("g")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(g.Assets) != 1 || g.Assets[0] != "tok-3" {
		t.Fatalf("assets = %v, want [tok-3]", g.Assets)
	}
	if g.Selected != "tok-3" {
		t.Fatalf("selected = %q", g.Selected)
	}
}

func TestSetEmptyGroup(t *testing.T) {
	s := NewStore()
	s.Set("empty", nil)
	g, err := s.Get("empty")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(g.Assets) != 0 || g.Selected != "" {
		t.Fatalf("group = %+v, want empty with no selection", g)
	}
}

func TestExtend(t *testing.T) {
	s := NewStore()
	s.Set("g", []string{"tok-1"})
	if err := s.Extend("g", []string{"tok-2", "tok-3"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	g, _ := s.Get("g")
	if len(g.Assets) != 3 {
		t.Fatalf("assets = %v", g.Assets)
	}
	// 原选中项仍在组内，不应改变
	if g.Selected != "tok-1" {
		t.Fatalf("selected = %q, want tok-1", g.Selected)
	}
}

// Reduce 移除选中项后必须修复选中为组内剩余资产
func TestReduceRepairsSelection(t *testing.T) {
	s := NewStore()
	s.Set("g", []string{"tok-1", "tok-2"})

	if err := s.Reduce("g", []string{"tok-1"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	g, _ := s.Get("g")
	if g.Selected != "tok-2" {
		t.Fatalf("selected = %q, want tok-2 after repair", g.Selected)
	}

	if err := s.Reduce("g", []string{"tok-2"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	g, _ = s.Get("g")
	if g.Selected != "" || len(g.Assets) != 0 {
		t.Fatalf("group = %+v, want empty with no selection", g)
	}
}

func TestRenameKeepsSelection(t *testing.T) {
	s := NewStore()
	s.Set("old", []string{"tok-1", "tok-2"})

	if err := s.Rename("old", "new"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := s.Get("old"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("old group still accessible: %v", err)
	}
	g, err := s.Get("new")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if g.Selected != "tok-1" || len(g.Assets) != 2 {
		t.Fatalf("group = %+v", g)
	}
}

func TestMissingGroupErrors(t *testing.T) {
	s := NewStore()
	if err := s.Extend("nope", []string{"x"}); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("Extend err = %v", err)
	}
	if err := s.Reduce("nope", []string{"x"}); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("Reduce err = %v", err)
	}
	if err := s.Rename("nope", "x"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("Rename err = %v", err)
	}
	if err := s.Remove("nope"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("Remove err = %v", err)
	}
	if _, err := s.Get("nope"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("Get err = %v", err)
	}
}

func TestListAndRemove(t *testing.T) {
	s := NewStore()
	s.Set("b", nil)
	s.Set("a", nil)

	names := s.List()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("List = %v, want [a b]", names)
	}

	if err := s.Remove("a"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	names = s.List()
	if len(names) != 1 || names[0] != "b" {
		t.Fatalf("List = %v, want [b]", names)
	}
}
