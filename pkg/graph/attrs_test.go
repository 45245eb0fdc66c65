package graph

import (
	"sync"
	"testing"
)

func TestAttributesOrder(t *testing.T) {
	tests := []struct {
		name string
		set  [][2]string
		want []string
	}{
		{"empty", nil, nil},
		{"single", [][2]string{{"label", "x"}}, []string{"label"}},
		{"reverse insertion", [][2]string{{"shape", "box"}, {"label", "x"}, {"color", "red"}}, []string{"color", "label", "shape"}},
		{"overwrite keeps one entry", [][2]string{{"b", "1"}, {"a", "1"}, {"b", "2"}}, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Attributes
			for _, kv := range tt.set {
				a.Set(kv[0], kv[1])
			}

			var got []string
			for k := range a.All() {
				got = append(got, k)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("All() keys = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("All() keys = %v, want %v", got, tt.want)
					break
				}
			}
			if a.IsEmpty() != (len(tt.want) == 0) {
				t.Errorf("IsEmpty() = %v with %d keys", a.IsEmpty(), len(tt.want))
			}
			if a.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", a.Len(), len(tt.want))
			}
		})
	}
}

func TestAttributesGet(t *testing.T) {
	var a Attributes
	if _, ok := a.Get("missing"); ok {
		t.Error("Get() on empty table should report absent")
	}

	a.Set("label", "first")
	a.Set("label", "second")
	if v, ok := a.Get("label"); !ok || v != "second" {
		t.Errorf("Get(label) = %q, %v, want second, true", v, ok)
	}

	a.SetAll(map[string]string{"shape": "box", "label": "third"})
	if v, _ := a.Get("label"); v != "third" {
		t.Errorf("SetAll() did not overwrite: label = %q", v)
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
}

func TestAttributesAllStopsEarly(t *testing.T) {
	var a Attributes
	a.Set("a", "1")
	a.Set("b", "2")
	a.Set("c", "3")

	count := 0
	for range a.All() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("iteration count = %d, want 2", count)
	}
}

func TestAllocatorSequential(t *testing.T) {
	var a Allocator
	for want := ID(0); want < 10; want++ {
		if got := a.Next(); got != want {
			t.Fatalf("Next() = %d, want %d", got, want)
		}
	}
}

func TestAllocatorConcurrent(t *testing.T) {
	var a Allocator
	const workers, perWorker = 8, 500

	results := make(chan ID, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				results <- a.Next()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[ID]bool, workers*perWorker)
	for id := range results {
		if seen[id] {
			t.Fatalf("ID %d issued twice", id)
		}
		seen[id] = true
	}
	for id := ID(0); id < workers*perWorker; id++ {
		if !seen[id] {
			t.Errorf("ID %d never issued", id)
		}
	}
}

func TestIDString(t *testing.T) {
	if got := ID(42).String(); got != "42" {
		t.Errorf("String() = %q, want 42", got)
	}
}
