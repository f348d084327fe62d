package server

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
	"github.com/pkg/errors"
)

// request carries the arguments of one command call (without the command name)
type request struct {
	args      []resp.Value
	storage   *storage.Keyspace
	closeConn bool // the connection is closed once the reply is flushed
}

type command interface {
	execute(req *request) resp.Value
}

// commandFunc lets a plain function serve as a command
type commandFunc func(req *request) resp.Value

func (c commandFunc) execute(req *request) resp.Value {
	return c(req)
}

var (
	errSyntax        = resp.MakeError("ERR syntax error")
	errNotInteger    = resp.MakeError("ERR value is not an integer or out of range")
	errNotFloat      = resp.MakeError("ERR value is not a valid float")
	errMinMaxFloat   = resp.MakeError("ERR min or max is not a float")
	errInvalidCursor = resp.MakeError("ERR invalid cursor")
)

// makeStorageError maps storage errors to the reply text Redis clients know
func makeStorageError(err error) resp.Value {
	switch {
	case errors.Is(err, storage.ErrTypeMismatch):
		return resp.MakeError("WRONGTYPE Operation against a key holding the wrong kind of value")
	case errors.Is(err, storage.ErrNotAnInteger):
		return errNotInteger
	case errors.Is(err, storage.ErrNotAFloat):
		return errNotFloat
	case errors.Is(err, storage.ErrInvalidArgument):
		msg := strings.TrimSuffix(err.Error(), ": "+storage.ErrInvalidArgument.Error())
		return resp.MakeError("ERR " + msg)
	default:
		return resp.MakeError("ERR " + err.Error())
	}
}

func (r *request) arg(i int) string {
	return string(r.args[i].String)
}

// rest returns the arguments starting at from as strings
func (r *request) rest(from int) []string {
	out := make([]string, 0, len(r.args)-from)
	for _, a := range r.args[from:] {
		out = append(out, string(a.String))
	}
	return out
}

// option returns the argument at i in upper case, for case-insensitive keywords
func (r *request) option(i int) string {
	return strings.ToUpper(r.arg(i))
}

func (r *request) int64Arg(i int) (int64, bool) {
	return storage.ParseInt(r.arg(i))
}

func (r *request) intArg(i int) (int, bool) {
	n, ok := r.int64Arg(i)
	if !ok || n > math.MaxInt || n < math.MinInt {
		return 0, false
	}
	return int(n), true
}

func (r *request) floatArg(i int) (float64, bool) {
	return parseFloat(r.arg(i))
}

// parseFloat accepts the numeric forms clients send, including +inf, -inf and inf
func parseFloat(s string) (float64, bool) {
	switch strings.ToLower(s) {
	case "+inf", "inf":
		return math.Inf(1), true
	case "-inf":
		return math.Inf(-1), true
	}
	return storage.ParseFloat(s)
}

// parseScoreBound parses a ZRANGEBYSCORE bound such as 1.5, (1.5, -inf or +inf
func parseScoreBound(s string) (storage.ScoreBound, bool) {
	var b storage.ScoreBound
	if strings.HasPrefix(s, "(") {
		b.Exclusive = true
		s = s[1:]
	}
	v, ok := parseFloat(s)
	if !ok {
		return storage.ScoreBound{}, false
	}
	b.Value = v
	return b, true
}

// parseListEnd parses LEFT or RIGHT
func parseListEnd(s string) (storage.ListEnd, bool) {
	switch strings.ToUpper(s) {
	case "LEFT":
		return storage.Left, true
	case "RIGHT":
		return storage.Right, true
	}
	return 0, false
}

// maxDeadlineMillis keeps deadlines within the range of time.Duration and UnixNano
const maxDeadlineMillis = int64(1) << 42

// deadlineFrom converts n units into an absolute deadline.
// absolute means n is a unix timestamp, otherwise it is relative to now
func deadlineFrom(n int64, unit time.Duration, absolute bool) (time.Time, bool) {
	perUnit := int64(unit / time.Millisecond)
	limit := maxDeadlineMillis / perUnit
	if n > limit || n < -limit {
		return time.Time{}, false
	}

	ms := n * perUnit
	if absolute {
		return time.UnixMilli(ms), true
	}
	return time.Now().Add(time.Duration(ms) * time.Millisecond), true
}

func makeFloat(f float64) resp.Value {
	return resp.MakeBulkString(storage.FormatFloat(f))
}

func makeFieldValues(pairs []storage.FieldValue) resp.Value {
	vals := make([]resp.Value, 0, len(pairs)*2)
	for _, p := range pairs {
		vals = append(vals, resp.MakeBulkString(p.Field), resp.MakeBulkString(p.Value))
	}
	return resp.MakeArray(vals)
}

func makeScoredMembers(items []storage.ScoredMember, withScores bool) resp.Value {
	vals := make([]resp.Value, 0, len(items)*2)
	for _, it := range items {
		vals = append(vals, resp.MakeBulkString(it.Member))
		if withScores {
			vals = append(vals, makeFloat(it.Score))
		}
	}
	return resp.MakeArray(vals)
}

// makeOptional returns a bulk string, or nil bulk string when ok is false
func makeOptional(s string, ok bool) resp.Value {
	if !ok {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkString(s)
}

func formatCursor(c uint64) string {
	return strconv.FormatUint(c, 10)
}
