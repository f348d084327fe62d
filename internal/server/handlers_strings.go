package server

import (
	"math"
	"time"

	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
)

func (e *Engine) registerStringCommands() {
	e.register("SET", commandFunc(set))
	e.register("GET", commandFunc(get))
	e.register("SETNX", commandFunc(setnx))
	e.register("MSET", commandFunc(mset))
	e.register("MGET", commandFunc(mget))
	e.register("INCR", incrCommand(1, false))
	e.register("DECR", incrCommand(-1, false))
	e.register("INCRBY", incrCommand(1, true))
	e.register("DECRBY", incrCommand(-1, true))
	e.register("INCRBYFLOAT", commandFunc(incrbyfloat))
	e.register("APPEND", commandFunc(appendCmd))
	e.register("STRLEN", commandFunc(strlen))
}

func get(req *request) resp.Value {
	val, ok, err := req.storage.Get(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return makeOptional(val, ok)
}

// set serves SET key value [NX | XX] [EX seconds | PX milliseconds | EXAT unix | PXAT unix-ms | KEEPTTL]
func set(req *request) resp.Value {
	var (
		opts   storage.SetOptions
		hasTTL bool
	)

	for i := 2; i < len(req.args); i++ {
		switch opt := req.option(i); opt {
		case "NX":
			if opts.XX {
				return resp.MakeError("ERR syntax error, NX cannot use with XX")
			}
			opts.NX = true
		case "XX":
			if opts.NX {
				return resp.MakeError("ERR syntax error, XX cannot use with NX")
			}
			opts.XX = true
		case "KEEPTTL":
			if hasTTL {
				return resp.MakeError("ERR syntax error, TTL already specified")
			}
			hasTTL = true
			opts.KeepTTL = true
		case "EX", "PX", "EXAT", "PXAT":
			if hasTTL {
				return resp.MakeError("ERR syntax error, TTL already specified")
			}
			if i+1 >= len(req.args) {
				return errSyntax
			}
			i++

			n, ok := req.int64Arg(i)
			if !ok {
				return resp.MakeError("ERR value TTL is not integer or out of range")
			}
			if n <= 0 {
				return resp.MakeError("ERR invalid expire time in 'set' command")
			}

			unit := time.Second
			if opt == "PX" || opt == "PXAT" {
				unit = time.Millisecond
			}
			at, ok := deadlineFrom(n, unit, opt == "EXAT" || opt == "PXAT")
			if !ok {
				return resp.MakeError("ERR invalid expire time in 'set' command")
			}

			hasTTL = true
			opts.ExpireAt = at
		default:
			return resp.MakeError("ERR syntax error with command argument '" + req.arg(i) + "'")
		}
	}

	if !req.storage.Set(req.arg(0), req.arg(1), opts) {
		return resp.MakeNilBulkString()
	}
	return resp.MakeOK()
}

func setnx(req *request) resp.Value {
	return resp.MakeBool(req.storage.SetNX(req.arg(0), req.arg(1)))
}

func mset(req *request) resp.Value {
	if len(req.args)%2 != 0 {
		return resp.MakeErrorWrongNumberOfArguments("MSET")
	}

	pairs := make([]storage.FieldValue, 0, len(req.args)/2)
	for i := 0; i < len(req.args); i += 2 {
		pairs = append(pairs, storage.FieldValue{Field: req.arg(i), Value: req.arg(i + 1)})
	}
	req.storage.MSet(pairs)
	return resp.MakeOK()
}

func mget(req *request) resp.Value {
	return resp.MakeNullableBulkStrings(req.storage.MGet(req.rest(0)))
}

// incrCommand builds INCR, DECR, INCRBY and DECRBY. With byArg the delta is read from
// the second argument and multiplied by sign
func incrCommand(sign int64, byArg bool) commandFunc {
	return func(req *request) resp.Value {
		delta := sign
		if byArg {
			n, ok := req.int64Arg(1)
			if !ok {
				return errNotInteger
			}
			if sign < 0 {
				if n == math.MinInt64 {
					return resp.MakeError("ERR decrement would overflow")
				}
				n = -n
			}
			delta = n
		}

		n, err := req.storage.IncrBy(req.arg(0), delta)
		if err != nil {
			return makeStorageError(err)
		}
		return resp.MakeInteger(n)
	}
}

func incrbyfloat(req *request) resp.Value {
	delta, ok := req.floatArg(1)
	if !ok {
		return errNotFloat
	}

	f, err := req.storage.IncrByFloat(req.arg(0), delta)
	if err != nil {
		return makeStorageError(err)
	}
	return makeFloat(f)
}

func appendCmd(req *request) resp.Value {
	n, err := req.storage.Append(req.arg(0), req.arg(1))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func strlen(req *request) resp.Value {
	n, err := req.storage.StrLen(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}
