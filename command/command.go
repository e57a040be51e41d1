// Package command parses decoded RESP frames into typed commands and
// executes them against a store.Store, producing reply frames.
package command

import (
	"strings"
	"unicode/utf8"

	"respd/resp"
)

// Command is the typed result of parsing a top-level RESP Array.
// Concrete types below are the only implementations.
type Command interface {
	isCommand()
	// Name returns the lowercase command name, used for metrics labels.
	Name() string
}

type Get struct{ Key string }
type Set struct {
	Key   string
	Value resp.Frame
}
type HGet struct{ Key, Field string }
type HSet struct {
	Key, Field string
	Value      resp.Frame
}
type HGetAll struct{ Key string }
type HMGet struct {
	Key    string
	Fields []string
}
type SAdd struct {
	Key     string
	Members []string
}
type SIsMember struct{ Key, Member string }
type Echo struct{ Message []byte }
type Unrecognized struct{ Name string }

func (Get) isCommand()          {}
func (Set) isCommand()          {}
func (HGet) isCommand()         {}
func (HSet) isCommand()         {}
func (HGetAll) isCommand()      {}
func (HMGet) isCommand()        {}
func (SAdd) isCommand()         {}
func (SIsMember) isCommand()    {}
func (Echo) isCommand()         {}
func (Unrecognized) isCommand() {}

func (Get) Name() string          { return "get" }
func (Set) Name() string          { return "set" }
func (HGet) Name() string         { return "hget" }
func (HSet) Name() string         { return "hset" }
func (HGetAll) Name() string      { return "hgetall" }
func (HMGet) Name() string        { return "hmget" }
func (SAdd) Name() string         { return "sadd" }
func (SIsMember) Name() string    { return "sismember" }
func (Echo) Name() string         { return "echo" }
func (u Unrecognized) Name() string { return u.Name }

// Error is the parse-failure sum type: InvalidCommand (wrong name, or
// the name element's shape is wrong) or InvalidArgument (wrong arity,
// or an argument frame isn't the expected BulkString). Compare kinds by
// field, never by matching the message text.
type Error struct {
	Kind ErrorKind
	Text string
}

type ErrorKind int

const (
	InvalidCommand ErrorKind = iota
	InvalidArgument
)

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidCommand:
		return "invalid command: " + e.Text
	default:
		return "invalid argument: " + e.Text
	}
}

func errInvalidCommand(text string) error {
	return &Error{Kind: InvalidCommand, Text: text}
}

func errInvalidArgument(text string) error {
	return &Error{Kind: InvalidArgument, Text: text}
}

// Parse converts a top-level Array frame into a Command. Any other
// top-level frame shape is InvalidCommand.
func Parse(frame resp.Frame) (Command, error) {
	array, ok := frame.(resp.Array)
	if !ok {
		return nil, errInvalidCommand("expected an array request")
	}
	if len(array) == 0 {
		return nil, errInvalidCommand("empty array")
	}

	nameFrame, ok := array[0].(resp.BulkString)
	if !ok {
		return nil, errInvalidCommand("command name must be a bulk string")
	}
	name := strings.ToLower(lossyUTF8(nameFrame))

	switch name {
	case "get":
		return parseGet(array)
	case "set":
		return parseSet(array)
	case "hget":
		return parseHGet(array)
	case "hset":
		return parseHSet(array)
	case "hgetall":
		return parseHGetAll(array)
	case "hmget":
		return parseHMGet(array)
	case "sadd":
		return parseSAdd(array)
	case "sismember":
		return parseSIsMember(array)
	case "echo":
		return parseEcho(array)
	default:
		return Unrecognized{Name: name}, nil
	}
}

// lossyUTF8 converts arbitrary bytes to UTF-8 text, replacing invalid
// sequences with the Unicode replacement character, per the design
// note that command names and keys/fields/members are treated as text
// while values stay raw bytes inside BulkString frames.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

func bulkStringArg(f resp.Frame, label string) (string, error) {
	b, ok := f.(resp.BulkString)
	if !ok {
		return "", errInvalidArgument(label + " must be a bulk string")
	}
	return lossyUTF8(b), nil
}

func parseGet(array resp.Array) (Command, error) {
	if len(array) != 2 {
		return nil, errInvalidArgument("get requires 1 argument")
	}
	key, err := bulkStringArg(array[1], "key")
	if err != nil {
		return nil, err
	}
	return Get{Key: key}, nil
}

func parseSet(array resp.Array) (Command, error) {
	if len(array) != 3 {
		return nil, errInvalidArgument("set requires 2 arguments")
	}
	key, err := bulkStringArg(array[1], "key")
	if err != nil {
		return nil, err
	}
	return Set{Key: key, Value: array[2]}, nil
}

func parseHGet(array resp.Array) (Command, error) {
	if len(array) != 3 {
		return nil, errInvalidArgument("hget requires 2 arguments")
	}
	key, err := bulkStringArg(array[1], "key")
	if err != nil {
		return nil, err
	}
	field, err := bulkStringArg(array[2], "field")
	if err != nil {
		return nil, err
	}
	return HGet{Key: key, Field: field}, nil
}

func parseHSet(array resp.Array) (Command, error) {
	if len(array) != 4 {
		return nil, errInvalidArgument("hset requires 3 arguments")
	}
	key, err := bulkStringArg(array[1], "key")
	if err != nil {
		return nil, err
	}
	field, err := bulkStringArg(array[2], "field")
	if err != nil {
		return nil, err
	}
	return HSet{Key: key, Field: field, Value: array[3]}, nil
}

func parseHGetAll(array resp.Array) (Command, error) {
	if len(array) != 2 {
		return nil, errInvalidArgument("hgetall requires 1 argument")
	}
	key, err := bulkStringArg(array[1], "key")
	if err != nil {
		return nil, err
	}
	return HGetAll{Key: key}, nil
}

func parseHMGet(array resp.Array) (Command, error) {
	if len(array) < 3 {
		return nil, errInvalidArgument("hmget requires at least 2 arguments")
	}
	key, err := bulkStringArg(array[1], "key")
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(array)-2)
	for _, f := range array[2:] {
		field, err := bulkStringArg(f, "field")
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return HMGet{Key: key, Fields: fields}, nil
}

func parseSAdd(array resp.Array) (Command, error) {
	if len(array) < 3 {
		return nil, errInvalidArgument("sadd requires at least 2 arguments")
	}
	key, err := bulkStringArg(array[1], "key")
	if err != nil {
		return nil, err
	}
	members := make([]string, 0, len(array)-2)
	for _, m := range array[2:] {
		member, err := bulkStringArg(m, "member")
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return SAdd{Key: key, Members: members}, nil
}

func parseSIsMember(array resp.Array) (Command, error) {
	if len(array) != 3 {
		return nil, errInvalidArgument("sismember requires 2 arguments")
	}
	key, err := bulkStringArg(array[1], "key")
	if err != nil {
		return nil, err
	}
	member, err := bulkStringArg(array[2], "member")
	if err != nil {
		return nil, err
	}
	return SIsMember{Key: key, Member: member}, nil
}

func parseEcho(array resp.Array) (Command, error) {
	if len(array) != 2 {
		return nil, errInvalidArgument("echo requires 1 argument")
	}
	msg, ok := array[1].(resp.BulkString)
	if !ok {
		return nil, errInvalidArgument("message must be a bulk string")
	}
	return Echo{Message: []byte(msg)}, nil
}
