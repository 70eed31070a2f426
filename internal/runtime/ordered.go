package runtime

import "math"

// hashKey is the comparable encoding of a Value under SameValueZero: -0
// normalizes to +0, NaN maps to a dedicated kind (float NaN is unusable as
// a map key), strings and bigints compare by content, and symbols/objects
// compare by identity through the ref field.
type hashKey struct {
	kind int
	num  float64
	str  string
	ref  any
}

const (
	hkUndefined = iota
	hkNull
	hkBool
	hkNumber
	hkNaN
	hkString
	hkBigInt
	hkRef
)

func makeHashKey(v Value) hashKey {
	switch n := v.(type) {
	case *UndefinedValue:
		return hashKey{kind: hkUndefined}
	case *NullValue:
		return hashKey{kind: hkNull}
	case *BooleanValue:
		f := 0.0
		if n.Value {
			f = 1
		}
		return hashKey{kind: hkBool, num: f}
	case *NumberValue:
		if math.IsNaN(n.Value) {
			return hashKey{kind: hkNaN}
		}
		if n.Value == 0 {
			return hashKey{kind: hkNumber, num: 0} // +0 and -0 collapse
		}
		return hashKey{kind: hkNumber, num: n.Value}
	case *StringValue:
		return hashKey{kind: hkString, str: n.Value}
	case *BigIntValue:
		return hashKey{kind: hkBigInt, str: n.Value.String()}
	}
	return hashKey{kind: hkRef, ref: v}
}

// hashEntry is one Map/Set entry threaded on the insertion-order list.
// Deletion tolerance: removing an entry clears its prev link and splices
// the neighbors, but the entry's own next pointer stays intact so any
// iterator parked on it keeps advancing through the survivors.
type hashEntry struct {
	key     Value
	value   Value
	prev    *hashEntry
	next    *hashEntry
	deleted bool
}

// OrderedMap is the insertion-ordered hash table behind script Map and
// Set. Keys compare by SameValueZero. Iterators are deliberately tolerant:
// they skip entries deleted after their creation and survive Clear, never
// raising a concurrent-modification failure.
type OrderedMap struct {
	entries map[hashKey]*hashEntry
	head    *hashEntry // dummy sentinel; head.next is the first live entry
	tail    *hashEntry
	size    int
}

// NewOrderedMap creates an empty table.
func NewOrderedMap() *OrderedMap {
	head := &hashEntry{}
	return &OrderedMap{
		entries: make(map[hashKey]*hashEntry),
		head:    head,
		tail:    head,
	}
}

// Size returns the number of live entries.
func (m *OrderedMap) Size() int { return m.size }

// Get returns the value stored under key.
func (m *OrderedMap) Get(key Value) (Value, bool) {
	e, ok := m.entries[makeHashKey(key)]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Has reports whether key is present.
func (m *OrderedMap) Has(key Value) bool {
	_, ok := m.entries[makeHashKey(key)]
	return ok
}

// Set stores value under key, preserving the original insertion position
// for an existing key.
func (m *OrderedMap) Set(key, value Value) {
	hk := makeHashKey(key)
	if e, ok := m.entries[hk]; ok {
		e.value = value
		return
	}
	e := &hashEntry{key: key, value: value, prev: m.tail}
	m.tail.next = e
	m.tail = e
	m.entries[hk] = e
	m.size++
}

// Delete removes key. The entry is tombstoned and spliced out of the
// forward list, but keeps its own next pointer so iterators parked on it
// continue correctly.
func (m *OrderedMap) Delete(key Value) bool {
	hk := makeHashKey(key)
	e, ok := m.entries[hk]
	if !ok {
		return false
	}
	delete(m.entries, hk)
	m.size--
	e.deleted = true
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		m.tail = e.prev
	}
	e.prev = nil
	return true
}

// Clear empties the table. The old list is cleared in place — every entry
// is tombstoned — and the live head is replaced with a fresh dummy, so
// iterators created before the clear drain without observing new entries.
func (m *OrderedMap) Clear() {
	for e := m.head.next; e != nil; e = e.next {
		e.deleted = true
		e.prev = nil
	}
	head := &hashEntry{}
	m.head = head
	m.tail = head
	m.entries = make(map[hashKey]*hashEntry)
	m.size = 0
}

// Iterator walks entries in insertion order, skipping tombstones.
type Iterator struct {
	cur *hashEntry
}

// Iterate returns an iterator positioned before the first entry.
func (m *OrderedMap) Iterate() *Iterator {
	return &Iterator{cur: m.head}
}

// Next advances to the next live entry, returning false when exhausted.
func (it *Iterator) Next() (key, value Value, ok bool) {
	for it.cur.next != nil {
		it.cur = it.cur.next
		if !it.cur.deleted {
			return it.cur.key, it.cur.value, true
		}
	}
	return nil, nil, false
}

// ForEach visits each live entry in insertion order. The callback may
// delete entries, including the current one.
func (m *OrderedMap) ForEach(fn func(key, value Value) error) error {
	it := m.Iterate()
	for {
		k, v, ok := it.Next()
		if !ok {
			return nil
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
}

// Keys returns the live keys in insertion order.
func (m *OrderedMap) Keys() []Value {
	keys := make([]Value, 0, m.size)
	for e := m.head.next; e != nil; e = e.next {
		if !e.deleted {
			keys = append(keys, e.key)
		}
	}
	return keys
}
