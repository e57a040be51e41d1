package resp

import "github.com/petar/GoLLRB/llrb"

// Map is the `%`-prefixed Frame variant: a sequence of
// (SimpleString-key, Frame-value) pairs kept in ascending key order.
// The order is maintained by an LLRB tree rather than sorted at
// encode time, per the design note that an ordered mapping is the
// appropriate representation for a key type that must iterate
// deterministically.
type Map struct {
	tree *llrb.LLRB
}

func (*Map) isFrame() {}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{tree: llrb.New()}
}

type mapEntry struct {
	key   string
	value Frame
}

func (e *mapEntry) Less(than llrb.Item) bool {
	return e.key < than.(*mapEntry).key
}

// Insert sets key to value, replacing any existing value for key.
func (m *Map) Insert(key string, value Frame) {
	m.tree.ReplaceOrInsert(&mapEntry{key: key, value: value})
}

// Get returns the value bound to key, if any.
func (m *Map) Get(key string) (Frame, bool) {
	item := m.tree.Get(&mapEntry{key: key})
	if item == nil {
		return nil, false
	}
	return item.(*mapEntry).value, true
}

// Len returns the number of pairs in the map.
func (m *Map) Len() int {
	return m.tree.Len()
}

// Each visits every pair in ascending key order.
func (m *Map) Each(fn func(key string, value Frame)) {
	m.tree.AscendGreaterOrEqual(&mapEntry{key: ""}, func(i llrb.Item) bool {
		e := i.(*mapEntry)
		fn(e.key, e.value)
		return true
	})
}

func (m *Map) equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	eq := true
	m.Each(func(key string, value Frame) {
		ov, ok := other.Get(key)
		if !ok || !Equal(value, ov) {
			eq = false
		}
	})
	return eq
}
