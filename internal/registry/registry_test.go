package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestRegisterAndLookupNames(t *testing.T) {
	r := New()
	r.Register("tok-1", "market-a/Yes", "Will X happen? yes")
	r.Register("tok-2", "market-a/No", "Will X happen? no")

	names := r.LookupNames([]string{"tok-2", "missing", "tok-1"})
	if len(names) != 3 {
		t.Fatalf("len(names) = %d, want 3", len(names))
	}
	if names[0] == nil || *names[0] != "market-a/No" {
		t.Fatalf("names[0] = %v, want market-a/No", names[0])
	}
	if names[1] != nil {
		t.Fatalf("names[1] = %v, want nil slot for unknown id", *names[1])
	}
	if names[2] == nil || *names[2] != "market-a/Yes" {
		t.Fatalf("names[2] = %v, want market-a/Yes", names[2])
	}
}

func TestRegisterOverwrite(t *testing.T) {
	r := New()
	r.Register("tok-1", "old-name", "old text")
	r.Register("tok-1", "new-name", "new text")

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	names := r.LookupNames([]string{"tok-1"})
	if *names[0] != "new-name" {
		t.Fatalf("name = %q, want new-name", *names[0])
	}
}

func TestLookupID(t *testing.T) {
	r := New()
	r.Register("tok-1", "market-a/Yes", "text a")
	r.Register("tok-2", "market-b/Yes", "text b")

	id, err := r.LookupID("market-b/Yes")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if id != "tok-2" {
		t.Fatalf("id = %q, want tok-2", id)
	}

	if _, err := r.LookupID("nope"); !errors.Is(err, ErrNameNotFound) {
		t.Fatalf("err = %v, want ErrNameNotFound", err)
	}

	r.Register("tok-3", "market-a/Yes", "duplicate name")
	if _, err := r.LookupID("market-a/Yes"); !errors.Is(err, ErrNameAmbiguous) {
		t.Fatalf("err = %v, want ErrNameAmbiguous", err)
	}
}

// 往返属性：LookupID 查到的 id 再查名称必须回到原名
func TestLookupRoundTrip(t *testing.T) {
	r := New()
	for i := 0; i < 20; i++ {
		r.Register(fmt.Sprintf("tok-%d", i), fmt.Sprintf("market-%d/Yes", i), fmt.Sprintf("question %d", i))
	}

	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("market-%d/Yes", i)
		id, err := r.LookupID(name)
		if err != nil {
			t.Fatalf("LookupID(%q): %v", name, err)
		}
		back := r.LookupNames([]string{id})
		if back[0] == nil || *back[0] != name {
			t.Fatalf("round trip %q -> %q -> %v", name, id, back[0])
		}
	}
}

func TestIDsInsertionOrder(t *testing.T) {
	r := New()
	r.Register("c", "name-c", "x")
	r.Register("a", "name-a", "x")
	r.Register("b", "name-b", "x")
	r.Register("a", "name-a2", "x") // 覆盖不改变顺序

	ids := r.IDs()
	want := []string{"c", "a", "b"}
	if len(ids) != len(want) {
		t.Fatalf("IDs = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDs = %v, want %v", ids, want)
		}
	}
}

// 并发写入与读取不应出现数据竞争或撕裂记录
func TestConcurrentRegisterAndRead(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("tok-%d-%d", w, i)
				r.Register(id, id+"/Yes", "concurrent text")
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			r.Search("concurrent", 10)
			r.LookupNames([]string{"tok-0-0"})
			r.Len()
		}
	}()

	wg.Wait()
	if r.Len() != 400 {
		t.Fatalf("Len = %d, want 400", r.Len())
	}
}
