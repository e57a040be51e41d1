package command

import (
	"sort"

	"respd/metrics"
	"respd/resp"
	"respd/store"
)

// nilSentinel is the literal hmget emits for a missing field instead
// of a NullBulkString — an observable quirk of the system this was
// distilled from, kept deliberately (see DESIGN.md Open Questions).
const nilSentinel = resp.SimpleString("(nil)")

// okReply is the shared OK reply for set/hset and the permissive
// Unrecognized case.
var okReply = resp.SimpleString("OK")

// Executor applies a parsed Command against a Store and produces the
// reply Frame. Execution is deterministic, performs no I/O, and has no
// failure mode of its own — any error in the pipeline happens earlier,
// during Parse.
type Executor struct {
	store   *store.Store
	metrics *metrics.Metrics
}

// NewExecutor returns an Executor bound to store. m may be nil, in
// which case command execution is not instrumented.
func NewExecutor(s *store.Store, m *metrics.Metrics) *Executor {
	return &Executor{store: s, metrics: m}
}

// Execute runs cmd against the bound store and returns its reply
// frame, recording a commands-processed metric labeled by command name
// on the way out.
func (e *Executor) Execute(cmd Command) resp.Frame {
	reply := e.dispatch(cmd)
	if e.metrics != nil {
		e.metrics.CommandProcessed(cmd.Name(), metrics.OutcomeOK)
	}
	return reply
}

func (e *Executor) dispatch(cmd Command) resp.Frame {
	switch c := cmd.(type) {
	case Get:
		if v, ok := e.store.Get(c.Key); ok {
			return v
		}
		return resp.Null{}
	case Set:
		e.store.Set(c.Key, c.Value)
		return okReply
	case HGet:
		if v, ok := e.store.HGet(c.Key, c.Field); ok {
			return v
		}
		return resp.Null{}
	case HSet:
		e.store.HSet(c.Key, c.Field, c.Value)
		return okReply
	case HGetAll:
		pairs, ok := e.store.HGetAll(c.Key)
		if !ok {
			return resp.Null{}
		}
		return hgetallArray(pairs)
	case HMGet:
		return hmgetArray(e.store, c)
	case SAdd:
		added := e.store.SAdd(c.Key, c.Members)
		return resp.Integer(added)
	case SIsMember:
		if e.store.SIsMember(c.Key, c.Member) {
			return resp.Integer(1)
		}
		return resp.Integer(0)
	case Echo:
		return resp.BulkString(c.Message)
	case Unrecognized:
		// Permissive: the reference implementation this was distilled
		// from replies OK to any unknown command rather than an error.
		// Kept for bug-compatibility (see DESIGN.md Open Questions).
		return okReply
	default:
		return resp.Null{}
	}
}

// hgetallArray flattens a snapshot of hash pairs into the alternating
// field/value array reply. Field order is the sorted order GoLLRB
// already committed Map encoding to (spec.md's scenario 3 accepts
// either order; this implementation commits to sorted for determinism
// across repeated calls against the same key).
func hgetallArray(pairs map[string]resp.Frame) resp.Array {
	fields := make([]string, 0, len(pairs))
	for f := range pairs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make(resp.Array, 0, len(pairs)*2)
	for _, f := range fields {
		out = append(out, resp.SimpleString(f), pairs[f])
	}
	return out
}

func hmgetArray(s *store.Store, c HMGet) resp.Array {
	out := make(resp.Array, 0, len(c.Fields))
	for _, field := range c.Fields {
		if v, ok := s.HGet(c.Key, field); ok {
			out = append(out, v)
		} else {
			out = append(out, nilSentinel)
		}
	}
	return out
}
