package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"respd/command"
	"respd/resp"
)

func array(elems ...resp.Frame) resp.Array {
	return resp.Array(elems)
}

func bs(s string) resp.BulkString {
	return resp.BulkString(s)
}

func TestParseGet(t *testing.T) {
	cmd, err := command.Parse(array(bs("GET"), bs("mykey")))
	require.NoError(t, err)
	assert.Equal(t, command.Get{Key: "mykey"}, cmd)
	assert.Equal(t, "get", cmd.Name())
}

func TestParseIsCaseInsensitive(t *testing.T) {
	cmd, err := command.Parse(array(bs("GeT"), bs("k")))
	require.NoError(t, err)
	assert.Equal(t, command.Get{Key: "k"}, cmd)
}

func TestParseSet(t *testing.T) {
	cmd, err := command.Parse(array(bs("set"), bs("k"), resp.Integer(7)))
	require.NoError(t, err)
	assert.Equal(t, command.Set{Key: "k", Value: resp.Integer(7)}, cmd)
}

func TestParseHGet(t *testing.T) {
	cmd, err := command.Parse(array(bs("hget"), bs("h"), bs("f")))
	require.NoError(t, err)
	assert.Equal(t, command.HGet{Key: "h", Field: "f"}, cmd)
}

func TestParseHSet(t *testing.T) {
	cmd, err := command.Parse(array(bs("hset"), bs("h"), bs("f"), bs("v")))
	require.NoError(t, err)
	assert.Equal(t, command.HSet{Key: "h", Field: "f", Value: bs("v")}, cmd)
}

func TestParseHGetAll(t *testing.T) {
	cmd, err := command.Parse(array(bs("hgetall"), bs("h")))
	require.NoError(t, err)
	assert.Equal(t, command.HGetAll{Key: "h"}, cmd)
}

func TestParseHMGet(t *testing.T) {
	cmd, err := command.Parse(array(bs("hmget"), bs("h"), bs("f1"), bs("f2")))
	require.NoError(t, err)
	assert.Equal(t, command.HMGet{Key: "h", Fields: []string{"f1", "f2"}}, cmd)
}

func TestParseSAdd(t *testing.T) {
	cmd, err := command.Parse(array(bs("sadd"), bs("s"), bs("m1"), bs("m2")))
	require.NoError(t, err)
	assert.Equal(t, command.SAdd{Key: "s", Members: []string{"m1", "m2"}}, cmd)
}

func TestParseSIsMember(t *testing.T) {
	cmd, err := command.Parse(array(bs("sismember"), bs("s"), bs("m")))
	require.NoError(t, err)
	assert.Equal(t, command.SIsMember{Key: "s", Member: "m"}, cmd)
}

func TestParseEcho(t *testing.T) {
	cmd, err := command.Parse(array(bs("echo"), bs("hello")))
	require.NoError(t, err)
	assert.Equal(t, command.Echo{Message: []byte("hello")}, cmd)
}

func TestParseUnrecognized(t *testing.T) {
	cmd, err := command.Parse(array(bs("frobnicate"), bs("x")))
	require.NoError(t, err)
	assert.Equal(t, command.Unrecognized{Name: "frobnicate"}, cmd)
	assert.Equal(t, "frobnicate", cmd.Name())
}

func TestParseRejectsNonArrayTopLevel(t *testing.T) {
	_, err := command.Parse(resp.SimpleString("GET mykey"))
	require.Error(t, err)
	var cmdErr *command.Error
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, command.InvalidCommand, cmdErr.Kind)
}

func TestParseRejectsEmptyArray(t *testing.T) {
	_, err := command.Parse(array())
	require.Error(t, err)
	var cmdErr *command.Error
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, command.InvalidCommand, cmdErr.Kind)
}

func TestParseRejectsNonBulkStringCommandName(t *testing.T) {
	_, err := command.Parse(array(resp.Integer(1)))
	require.Error(t, err)
	var cmdErr *command.Error
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, command.InvalidCommand, cmdErr.Kind)
}

func TestParseRejectsWrongArity(t *testing.T) {
	cases := []resp.Array{
		array(bs("get")),
		array(bs("get"), bs("k"), bs("extra")),
		array(bs("set"), bs("k")),
		array(bs("hget"), bs("h")),
		array(bs("hset"), bs("h"), bs("f")),
		array(bs("hgetall")),
		array(bs("hmget"), bs("h")),
		array(bs("sadd"), bs("s")),
		array(bs("sismember"), bs("s")),
		array(bs("echo")),
	}

	for _, c := range cases {
		_, err := command.Parse(c)
		require.Error(t, err)
		var cmdErr *command.Error
		require.ErrorAs(t, err, &cmdErr)
		assert.Equal(t, command.InvalidArgument, cmdErr.Kind)
	}
}

func TestParseRejectsNonBulkStringArgument(t *testing.T) {
	_, err := command.Parse(array(bs("get"), resp.Integer(1)))
	require.Error(t, err)
	var cmdErr *command.Error
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, command.InvalidArgument, cmdErr.Kind)
}

func TestParseInvalidUTF8KeyIsLossilyDecoded(t *testing.T) {
	invalid := resp.BulkString([]byte{0xff, 0xfe})
	cmd, err := command.Parse(array(bs("get"), invalid))
	require.NoError(t, err)
	got, ok := cmd.(command.Get)
	require.True(t, ok)
	assert.NotEmpty(t, got.Key)
}
