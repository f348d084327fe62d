package server

import (
	"strconv"
	"time"

	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
)

func (e *Engine) registerGenericCommands() {
	e.register("TYPE", commandFunc(typ))
	e.register("EXISTS", commandFunc(exists))
	e.register("DEL", commandFunc(del))
	e.register("UNLINK", commandFunc(del))
	e.register("RENAME", commandFunc(rename))
	e.register("EXPIRE", expireCommand(time.Second, false))
	e.register("PEXPIRE", expireCommand(time.Millisecond, false))
	e.register("EXPIREAT", expireCommand(time.Second, true))
	e.register("PEXPIREAT", expireCommand(time.Millisecond, true))
	e.register("PERSIST", commandFunc(persist))
	e.register("TTL", commandFunc(ttl))
	e.register("PTTL", commandFunc(pttl))
	e.register("SCAN", commandFunc(scan))
}

func typ(req *request) resp.Value {
	return resp.MakeSimpleString(req.storage.Type(req.arg(0)).String())
}

func exists(req *request) resp.Value {
	return resp.MakeInteger(int64(req.storage.Exists(req.rest(0)...)))
}

func del(req *request) resp.Value {
	return resp.MakeInteger(int64(req.storage.Delete(req.rest(0)...)))
}

func rename(req *request) resp.Value {
	if err := req.storage.Rename(req.arg(0), req.arg(1)); err != nil {
		return makeStorageError(err)
	}
	return resp.MakeOK()
}

// expireCommand builds EXPIRE and its variants. unit is the resolution of the argument,
// absolute selects a unix timestamp instead of a relative timeout
func expireCommand(unit time.Duration, absolute bool) commandFunc {
	return func(req *request) resp.Value {
		n, ok := req.int64Arg(1)
		if !ok {
			return errNotInteger
		}

		at, ok := deadlineFrom(n, unit, absolute)
		if !ok {
			return resp.MakeError("ERR invalid expire time")
		}

		return resp.MakeBool(req.storage.Expire(req.arg(0), at))
	}
}

func persist(req *request) resp.Value {
	return resp.MakeBool(req.storage.Persist(req.arg(0)))
}

// ttl returns the remaining lifetime in seconds, -1 without TTL and -2 for a missing key
func ttl(req *request) resp.Value {
	d, status := req.storage.Expiry(req.arg(0))
	if status != storage.ExpActive {
		return resp.MakeInteger(int64(status))
	}
	return resp.MakeInteger(int64((d + time.Second/2) / time.Second))
}

// pttl is ttl in milliseconds
func pttl(req *request) resp.Value {
	d, status := req.storage.Expiry(req.arg(0))
	if status != storage.ExpActive {
		return resp.MakeInteger(int64(status))
	}
	return resp.MakeInteger(d.Milliseconds())
}

// scan serves SCAN cursor [MATCH pattern] [COUNT count] [TYPE type]
func scan(req *request) resp.Value {
	cursor, err := strconv.ParseUint(req.arg(0), 10, 64)
	if err != nil {
		return errInvalidCursor
	}

	var opts storage.ScanOptions
	for i := 1; i < len(req.args); i += 2 {
		if i+1 >= len(req.args) {
			return errSyntax
		}

		switch req.option(i) {
		case "MATCH":
			opts.Match = req.arg(i + 1)
		case "COUNT":
			n, ok := req.intArg(i + 1)
			if !ok {
				return errNotInteger
			}
			if n < 1 {
				return errSyntax
			}
			opts.Count = n
		case "TYPE":
			opts.Type = storage.ParseDataType(req.arg(i + 1))
			if opts.Type == storage.TypeNone {
				return resp.MakeError("ERR unknown type name '" + req.arg(i+1) + "'")
			}
		default:
			return errSyntax
		}
	}

	next, keys, err := req.storage.Scan(cursor, opts)
	if err != nil {
		return makeStorageError(err)
	}

	return resp.MakeArray([]resp.Value{
		resp.MakeBulkString(formatCursor(next)),
		resp.MakeBulkStrings(keys),
	})
}
