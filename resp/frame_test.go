package resp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"respd/resp"
)

func TestEqualAcrossDifferentTypes(t *testing.T) {
	assert.False(t, resp.Equal(resp.Integer(1), resp.SimpleString("1")))
	assert.False(t, resp.Equal(resp.BulkString("x"), resp.SimpleString("x")))
	assert.False(t, resp.Equal(resp.NullBulkString{}, resp.NullArray{}))
	assert.False(t, resp.Equal(resp.NullBulkString{}, resp.Null{}))
}

func TestEqualArrayOrderSensitive(t *testing.T) {
	a := resp.Array{resp.Integer(1), resp.Integer(2)}
	b := resp.Array{resp.Integer(2), resp.Integer(1)}
	assert.False(t, resp.Equal(a, b))
	assert.True(t, resp.Equal(a, a))
}

func TestEqualSetOrderSensitive(t *testing.T) {
	// Set's own Equal comparison is order-sensitive per doc comment,
	// even though membership itself is unordered conceptually.
	var a, b resp.Set
	a = a.Add(resp.Integer(1)).Add(resp.Integer(2))
	b = b.Add(resp.Integer(2)).Add(resp.Integer(1))
	assert.False(t, resp.Equal(a, b))
}

func TestSetAddDeduplicates(t *testing.T) {
	var s resp.Set
	s = s.Add(resp.Integer(1))
	s = s.Add(resp.Integer(1))
	s = s.Add(resp.BulkString("x"))
	s = s.Add(resp.BulkString("x"))
	assert.Len(t, s, 2)
}

func TestSetAddPreservesFirstOccurrenceOrder(t *testing.T) {
	var s resp.Set
	s = s.Add(resp.Integer(3))
	s = s.Add(resp.Integer(1))
	s = s.Add(resp.Integer(2))
	s = s.Add(resp.Integer(1))

	want := resp.Set{resp.Integer(3), resp.Integer(1), resp.Integer(2)}
	assert.True(t, resp.Equal(want, s))
}

func TestMapEqualIgnoresInsertionOrder(t *testing.T) {
	a := resp.NewMap()
	a.Insert("x", resp.Integer(1))
	a.Insert("y", resp.Integer(2))

	b := resp.NewMap()
	b.Insert("y", resp.Integer(2))
	b.Insert("x", resp.Integer(1))

	assert.True(t, resp.Equal(a, b))
}

func TestMapEqualDetectsDifferentSize(t *testing.T) {
	a := resp.NewMap()
	a.Insert("x", resp.Integer(1))

	b := resp.NewMap()
	b.Insert("x", resp.Integer(1))
	b.Insert("y", resp.Integer(2))

	assert.False(t, resp.Equal(a, b))
}

func TestMapInsertReplacesExisting(t *testing.T) {
	m := resp.NewMap()
	m.Insert("k", resp.Integer(1))
	m.Insert("k", resp.Integer(2))

	assert.Equal(t, 1, m.Len())
	v, ok := m.Get("k")
	assert.True(t, ok)
	assert.True(t, resp.Equal(resp.Integer(2), v))
}

func TestMapGetMissing(t *testing.T) {
	m := resp.NewMap()
	_, ok := m.Get("absent")
	assert.False(t, ok)
}

func TestMapEachAscendingOrder(t *testing.T) {
	m := resp.NewMap()
	for _, k := range []string{"banana", "apple", "cherry"} {
		m.Insert(k, resp.SimpleString(k))
	}

	var seen []string
	m.Each(func(key string, value resp.Frame) {
		seen = append(seen, key)
	})
	assert.Equal(t, []string{"apple", "banana", "cherry"}, seen)
}
