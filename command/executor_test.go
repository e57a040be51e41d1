package command_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"respd/command"
	"respd/metrics"
	"respd/resp"
	"respd/store"
)

func newExecutor(t *testing.T) *command.Executor {
	t.Helper()
	s := store.New()
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	return command.NewExecutor(s, m)
}

func TestExecuteGetMissingReturnsNull(t *testing.T) {
	exec := newExecutor(t)
	reply := exec.Execute(command.Get{Key: "absent"})
	assert.True(t, resp.Equal(resp.Null{}, reply))
}

func TestExecuteSetThenGet(t *testing.T) {
	exec := newExecutor(t)

	reply := exec.Execute(command.Set{Key: "k", Value: resp.BulkString("v")})
	assert.True(t, resp.Equal(resp.SimpleString("OK"), reply))

	reply = exec.Execute(command.Get{Key: "k"})
	assert.True(t, resp.Equal(resp.BulkString("v"), reply))
}

func TestExecuteHGetMissingReturnsNull(t *testing.T) {
	exec := newExecutor(t)
	reply := exec.Execute(command.HGet{Key: "h", Field: "f"})
	assert.True(t, resp.Equal(resp.Null{}, reply))
}

func TestExecuteHSetThenHGet(t *testing.T) {
	exec := newExecutor(t)

	reply := exec.Execute(command.HSet{Key: "h", Field: "f", Value: resp.Integer(42)})
	assert.True(t, resp.Equal(resp.SimpleString("OK"), reply))

	reply = exec.Execute(command.HGet{Key: "h", Field: "f"})
	assert.True(t, resp.Equal(resp.Integer(42), reply))
}

func TestExecuteHGetAllMissingKeyReturnsNull(t *testing.T) {
	exec := newExecutor(t)
	reply := exec.Execute(command.HGetAll{Key: "nope"})
	assert.True(t, resp.Equal(resp.Null{}, reply))
}

func TestExecuteHGetAllFlattensSortedByField(t *testing.T) {
	exec := newExecutor(t)
	exec.Execute(command.HSet{Key: "h", Field: "zeta", Value: resp.Integer(1)})
	exec.Execute(command.HSet{Key: "h", Field: "alpha", Value: resp.Integer(2)})

	reply := exec.Execute(command.HGetAll{Key: "h"})
	want := resp.Array{
		resp.SimpleString("alpha"), resp.Integer(2),
		resp.SimpleString("zeta"), resp.Integer(1),
	}
	assert.True(t, resp.Equal(want, reply))
}

// TestExecuteHMGetMissingFieldUsesNilSentinel pins the observable quirk
// that a missing hmget field comes back as the literal string "(nil)"
// rather than a RESP Null/NullBulkString frame.
func TestExecuteHMGetMissingFieldUsesNilSentinel(t *testing.T) {
	exec := newExecutor(t)
	exec.Execute(command.HSet{Key: "h", Field: "present", Value: resp.BulkString("v")})

	reply := exec.Execute(command.HMGet{Key: "h", Fields: []string{"present", "absent"}})
	want := resp.Array{resp.BulkString("v"), resp.SimpleString("(nil)")}
	assert.True(t, resp.Equal(want, reply))
}

func TestExecuteSAddReturnsAddedCount(t *testing.T) {
	exec := newExecutor(t)

	reply := exec.Execute(command.SAdd{Key: "s", Members: []string{"a", "b", "a"}})
	assert.True(t, resp.Equal(resp.Integer(2), reply))

	reply = exec.Execute(command.SAdd{Key: "s", Members: []string{"a", "c"}})
	assert.True(t, resp.Equal(resp.Integer(1), reply))
}

func TestExecuteSIsMember(t *testing.T) {
	exec := newExecutor(t)
	exec.Execute(command.SAdd{Key: "s", Members: []string{"member"}})

	reply := exec.Execute(command.SIsMember{Key: "s", Member: "member"})
	assert.True(t, resp.Equal(resp.Integer(1), reply))

	reply = exec.Execute(command.SIsMember{Key: "s", Member: "absent"})
	assert.True(t, resp.Equal(resp.Integer(0), reply))
}

func TestExecuteEcho(t *testing.T) {
	exec := newExecutor(t)
	reply := exec.Execute(command.Echo{Message: []byte("hello")})
	assert.True(t, resp.Equal(resp.BulkString("hello"), reply))
}

// TestExecuteUnrecognizedRepliesOK pins the permissive bug-compatible
// behavior: an unrecognized command name replies OK rather than an error.
func TestExecuteUnrecognizedRepliesOK(t *testing.T) {
	exec := newExecutor(t)
	reply := exec.Execute(command.Unrecognized{Name: "frobnicate"})
	assert.True(t, resp.Equal(resp.SimpleString("OK"), reply))
}

func TestExecuteWithNilMetricsDoesNotPanic(t *testing.T) {
	s := store.New()
	exec := command.NewExecutor(s, nil)
	require.NotPanics(t, func() {
		exec.Execute(command.Get{Key: "k"})
	})
}
