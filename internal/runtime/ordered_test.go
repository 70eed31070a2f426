package runtime

import (
	"math"
	"testing"
)

func TestOrderedMapInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set(String("a"), Number(1))
	m.Set(String("b"), Number(2))
	m.Set(String("c"), Number(3))

	keys := m.Keys()
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys", len(keys))
	}
	for i, k := range keys {
		if k.(*StringValue).Value != want[i] {
			t.Errorf("key %d: got %s", i, k.ToDisplay())
		}
	}
}

func TestOrderedMapUpdateKeepsPosition(t *testing.T) {
	m := NewOrderedMap()
	m.Set(String("a"), Number(1))
	m.Set(String("b"), Number(2))
	m.Set(String("a"), Number(10))
	keys := m.Keys()
	if keys[0].(*StringValue).Value != "a" {
		t.Error("updated key moved")
	}
	if v, _ := m.Get(String("a")); v.(*NumberValue).Value != 10 {
		t.Error("update lost")
	}
}

// Deleting entries mid-iteration must not disturb an existing iterator:
// it continues forward through the survivors in insertion order.
func TestIteratorSurvivesDeletion(t *testing.T) {
	m := NewOrderedMap()
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		m.Set(String(k), Number(1))
	}
	it := m.Iterate()
	// Delete every second entry before touching the iterator.
	m.Delete(String("b"))
	m.Delete(String("d"))

	var got []string
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, k.(*StringValue).Value)
	}
	want := []string{"a", "c", "e"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// An iterator parked on an entry that is then deleted keeps advancing:
// deletion leaves the entry's next pointer intact.
func TestIteratorParkedOnDeletedEntry(t *testing.T) {
	m := NewOrderedMap()
	for _, k := range []string{"a", "b", "c"} {
		m.Set(String(k), Number(1))
	}
	it := m.Iterate()
	k, _, _ := it.Next()
	if k.(*StringValue).Value != "a" {
		t.Fatal("first key wrong")
	}
	m.Delete(String("a"))
	k, _, ok := it.Next()
	if !ok || k.(*StringValue).Value != "b" {
		t.Fatalf("iterator broken after deleting its current entry: %v %v", k, ok)
	}
}

// Iterators created before Clear drain without error and never observe
// entries added afterwards.
func TestIteratorSurvivesClear(t *testing.T) {
	m := NewOrderedMap()
	m.Set(String("a"), Number(1))
	m.Set(String("b"), Number(2))
	it := m.Iterate()
	it.Next()
	m.Clear()
	m.Set(String("z"), Number(26))

	if _, _, ok := it.Next(); ok {
		t.Error("iterator observed entries across a clear")
	}
	if m.Size() != 1 {
		t.Errorf("size %d after clear+set", m.Size())
	}
}

func TestSameValueZeroKeys(t *testing.T) {
	m := NewOrderedMap()
	m.Set(Number(math.Copysign(0, -1)), String("neg"))
	if v, ok := m.Get(Number(0)); !ok || v.(*StringValue).Value != "neg" {
		t.Error("-0 and +0 should be the same key")
	}

	m.Set(Number(math.NaN()), String("nan"))
	if v, ok := m.Get(Number(math.NaN())); !ok || v.(*StringValue).Value != "nan" {
		t.Error("NaN should match itself as a key")
	}
	if m.Size() != 2 {
		t.Errorf("size %d", m.Size())
	}
}

func TestObjectKeysByIdentity(t *testing.T) {
	m := NewOrderedMap()
	o1 := NewObject("Object", nil)
	o2 := NewObject("Object", nil)
	m.Set(o1, Number(1))
	if m.Has(o2) {
		t.Error("distinct objects must be distinct keys")
	}
	if !m.Has(o1) {
		t.Error("object key lost")
	}
}

func TestDeleteReturnsPresence(t *testing.T) {
	m := NewOrderedMap()
	m.Set(String("a"), Number(1))
	if !m.Delete(String("a")) {
		t.Error("delete of present key should report true")
	}
	if m.Delete(String("a")) {
		t.Error("delete of absent key should report false")
	}
}
