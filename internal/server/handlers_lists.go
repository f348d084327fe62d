package server

import (
	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
	"github.com/pkg/errors"
)

func (e *Engine) registerListCommands() {
	e.register("LPUSH", pushCommand(storage.Left))
	e.register("RPUSH", pushCommand(storage.Right))
	e.register("LPOP", popCommand(storage.Left))
	e.register("RPOP", popCommand(storage.Right))
	e.register("LRANGE", commandFunc(lrange))
	e.register("LLEN", commandFunc(llen))
	e.register("LINDEX", commandFunc(lindex))
	e.register("LSET", commandFunc(lset))
	e.register("LINSERT", commandFunc(linsert))
	e.register("LREM", commandFunc(lrem))
	e.register("LTRIM", commandFunc(ltrim))
	e.register("LMOVE", commandFunc(lmove))
	e.register("RPOPLPUSH", commandFunc(rpoplpush))
}

func pushCommand(end storage.ListEnd) commandFunc {
	return func(req *request) resp.Value {
		var (
			n   int
			err error
		)
		if end == storage.Left {
			n, err = req.storage.LPush(req.arg(0), req.rest(1)...)
		} else {
			n, err = req.storage.RPush(req.arg(0), req.rest(1)...)
		}
		if err != nil {
			return makeStorageError(err)
		}
		return resp.MakeInteger(int64(n))
	}
}

func popCommand(end storage.ListEnd) commandFunc {
	return func(req *request) resp.Value {
		var (
			val string
			ok  bool
			err error
		)
		if end == storage.Left {
			val, ok, err = req.storage.LPop(req.arg(0))
		} else {
			val, ok, err = req.storage.RPop(req.arg(0))
		}
		if err != nil {
			return makeStorageError(err)
		}
		return makeOptional(val, ok)
	}
}

func lrange(req *request) resp.Value {
	start, ok1 := req.intArg(1)
	stop, ok2 := req.intArg(2)
	if !ok1 || !ok2 {
		return errNotInteger
	}

	vals, err := req.storage.LRange(req.arg(0), start, stop)
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeBulkStrings(vals)
}

func llen(req *request) resp.Value {
	n, err := req.storage.LLen(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func lindex(req *request) resp.Value {
	index, ok := req.intArg(1)
	if !ok {
		return errNotInteger
	}

	val, ok, err := req.storage.LIndex(req.arg(0), index)
	if err != nil {
		return makeStorageError(err)
	}
	return makeOptional(val, ok)
}

func lset(req *request) resp.Value {
	index, ok := req.intArg(1)
	if !ok {
		return errNotInteger
	}

	err := req.storage.LSet(req.arg(0), index, req.arg(2))
	switch {
	case err == nil:
		return resp.MakeOK()
	case errors.Is(err, storage.ErrIndexOutOfRange):
		return resp.MakeError("ERR index out of range")
	case errors.Is(err, storage.ErrKeyNotFound):
		return resp.MakeError("ERR no such key")
	default:
		return makeStorageError(err)
	}
}

// linsert serves LINSERT key BEFORE|AFTER pivot element
func linsert(req *request) resp.Value {
	var before bool
	switch req.option(1) {
	case "BEFORE":
		before = true
	case "AFTER":
	default:
		return errSyntax
	}

	n, err := req.storage.LInsert(req.arg(0), before, req.arg(2), req.arg(3))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func lrem(req *request) resp.Value {
	count, ok := req.intArg(1)
	if !ok {
		return errNotInteger
	}

	n, err := req.storage.LRem(req.arg(0), count, req.arg(2))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func ltrim(req *request) resp.Value {
	start, ok1 := req.intArg(1)
	stop, ok2 := req.intArg(2)
	if !ok1 || !ok2 {
		return errNotInteger
	}

	if err := req.storage.LTrim(req.arg(0), start, stop); err != nil {
		return makeStorageError(err)
	}
	return resp.MakeOK()
}

// lmove serves LMOVE source destination LEFT|RIGHT LEFT|RIGHT
func lmove(req *request) resp.Value {
	from, ok1 := parseListEnd(req.arg(2))
	to, ok2 := parseListEnd(req.arg(3))
	if !ok1 || !ok2 {
		return errSyntax
	}
	return move(req, from, to)
}

func rpoplpush(req *request) resp.Value {
	return move(req, storage.Right, storage.Left)
}

func move(req *request, from, to storage.ListEnd) resp.Value {
	val, ok, err := req.storage.LMove(req.arg(0), req.arg(1), from, to)
	if err != nil {
		return makeStorageError(err)
	}
	return makeOptional(val, ok)
}
