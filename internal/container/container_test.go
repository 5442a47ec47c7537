package container

import (
	"reflect"
	"testing"
)

func TestOrderedMapInsertionOrder(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)

	want := []string{"c", "a", "b"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestOrderedMapOverwritePreservesPosition(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Set("a", 99)

	want := []string{"a", "b", "c"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() after overwrite = %v, want %v", got, want)
	}
	if v, _ := m.Get("a"); v != 99 {
		t.Errorf("Get(a) = %d, want 99", v)
	}
}

func TestOrderedMapRemovePreservesOrder(t *testing.T) {
	m := NewOrderedMap[string, int]()
	for _, k := range []string{"a", "b", "c", "d"} {
		m.Set(k, 0)
	}
	m.Remove("b")

	want := []string{"a", "c", "d"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() after remove = %v, want %v", got, want)
	}
	if m.Count() != 3 {
		t.Errorf("Count() = %d, want 3", m.Count())
	}
}

func TestOrderedMapRemoveHeadAndTail(t *testing.T) {
	m := NewOrderedMap[int, int]()
	m.Set(1, 0)
	m.Set(2, 0)
	m.Set(3, 0)

	m.Remove(1) // head
	m.Remove(3) // tail

	want := []int{2}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

type cloneableVal struct {
	items []int
}

func (v cloneableVal) CloneValue() cloneableVal {
	cp := make([]int, len(v.items))
	copy(cp, v.items)
	return cloneableVal{items: cp}
}

func TestOrderedMapCloneDeepCopiesRegisteredTypes(t *testing.T) {
	m := NewOrderedMap[string, cloneableVal]()
	m.Set("a", cloneableVal{items: []int{1, 2, 3}})

	clone := Clone(m)
	orig, _ := m.Get("a")
	orig.items[0] = 999 // mutate original's backing array directly
	m.Set("a", orig)

	got, _ := clone.Get("a")
	if got.items[0] != 1 {
		t.Errorf("clone was affected by mutation of original: %v", got.items)
	}
}

func TestOrderedSetBasics(t *testing.T) {
	s := NewOrderedSet[int]()
	s.Add(3)
	s.Add(1)
	s.Add(2)

	if !s.Contains(1) {
		t.Error("expected set to contain 1")
	}
	want := []int{3, 1, 2}
	if got := s.Items(); !reflect.DeepEqual(got, want) {
		t.Errorf("Items() = %v, want %v", got, want)
	}

	s.Remove(1)
	if s.Contains(1) {
		t.Error("expected 1 to be removed")
	}
	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
}
