package queue

import (
	"fmt"
	"testing"
)

func TestFIFOOrder(t *testing.T) {
	q := New(0)
	for i := 0; i < 5; i++ {
		q.Enqueue(Track{Title: fmt.Sprintf("t%d", i), URL: "u"})
	}

	for i := 0; i < 5; i++ {
		got, ok := q.DequeueNext()
		if !ok {
			t.Fatalf("queue empty at %d", i)
		}
		if want := fmt.Sprintf("t%d", i); got.Title != want {
			t.Errorf("dequeued %q, want %q", got.Title, want)
		}
	}

	if _, ok := q.DequeueNext(); ok {
		t.Error("dequeue from empty queue succeeded")
	}
}

func TestClear(t *testing.T) {
	for _, size := range []int{0, 1, 7, 100} {
		t.Run(fmt.Sprintf("size%d", size), func(t *testing.T) {
			q := New(0)
			for i := 0; i < size; i++ {
				q.Enqueue(Track{URL: "u"})
			}
			if got := q.Clear(); got != size {
				t.Errorf("Clear() = %d, want %d", got, size)
			}
			if q.Len() != 0 {
				t.Errorf("Len() = %d after clear, want 0", q.Len())
			}
		})
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := New(0)
	q.Enqueue(Track{Title: "a", URL: "u"})

	head, ok := q.Peek()
	if !ok || head.Title != "a" {
		t.Fatalf("Peek = %v %v, want a", head, ok)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d after peek, want 1", q.Len())
	}
}

func TestRemove(t *testing.T) {
	q := New(0)
	q.Enqueue(Track{Title: "a"}, Track{Title: "b"}, Track{Title: "c"})

	if !q.Remove(1) {
		t.Fatal("Remove(1) failed")
	}
	if q.Remove(5) {
		t.Error("Remove out of range succeeded")
	}
	if q.Remove(-1) {
		t.Error("Remove negative index succeeded")
	}

	got := q.Tracks()
	if len(got) != 2 || got[0].Title != "a" || got[1].Title != "c" {
		t.Errorf("remaining = %v, want [a c]", got)
	}
}

func TestEnqueueCap(t *testing.T) {
	q := New(2)
	added := q.Enqueue(Track{Title: "a"}, Track{Title: "b"}, Track{Title: "c"})
	if added != 2 {
		t.Errorf("Enqueue added %d, want 2", added)
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	if added := q.Enqueue(Track{Title: "d"}); added != 0 {
		t.Errorf("Enqueue into full queue added %d, want 0", added)
	}
}

func TestTracksReturnsCopy(t *testing.T) {
	q := New(0)
	q.Enqueue(Track{Title: "a"})

	snapshot := q.Tracks()
	snapshot[0].Title = "mutated"

	if head, _ := q.Peek(); head.Title != "a" {
		t.Error("mutating the snapshot changed the queue")
	}
}

func TestNeedsResolution(t *testing.T) {
	if !(Track{SearchQuery: "artist song"}).NeedsResolution() {
		t.Error("track without URL should need resolution")
	}
	if (Track{URL: "https://example.com"}).NeedsResolution() {
		t.Error("track with URL should not need resolution")
	}
}
