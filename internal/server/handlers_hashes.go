package server

import (
	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
)

func (e *Engine) registerHashCommands() {
	e.register("HSET", commandFunc(hset))
	e.register("HSETNX", commandFunc(hsetnx))
	e.register("HGET", commandFunc(hget))
	e.register("HMGET", commandFunc(hmget))
	e.register("HGETALL", commandFunc(hgetall))
	e.register("HDEL", commandFunc(hdel))
	e.register("HEXISTS", commandFunc(hexists))
	e.register("HLEN", commandFunc(hlen))
	e.register("HINCRBY", commandFunc(hincrby))
	e.register("HINCRBYFLOAT", commandFunc(hincrbyfloat))
	e.register("HKEYS", commandFunc(hkeys))
	e.register("HVALS", commandFunc(hvals))
}

func hset(req *request) resp.Value {
	if len(req.args)%2 != 1 {
		return resp.MakeErrorWrongNumberOfArguments("HSET")
	}

	fields := make([]storage.FieldValue, 0, len(req.args)/2)
	for i := 1; i < len(req.args); i += 2 {
		fields = append(fields, storage.FieldValue{Field: req.arg(i), Value: req.arg(i + 1)})
	}

	n, err := req.storage.HSet(req.arg(0), fields)
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func hsetnx(req *request) resp.Value {
	ok, err := req.storage.HSetNX(req.arg(0), req.arg(1), req.arg(2))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeBool(ok)
}

func hget(req *request) resp.Value {
	val, ok, err := req.storage.HGet(req.arg(0), req.arg(1))
	if err != nil {
		return makeStorageError(err)
	}
	return makeOptional(val, ok)
}

func hmget(req *request) resp.Value {
	vals, err := req.storage.HMGet(req.arg(0), req.rest(1))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeNullableBulkStrings(vals)
}

func hgetall(req *request) resp.Value {
	pairs, err := req.storage.HGetAll(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return makeFieldValues(pairs)
}

func hdel(req *request) resp.Value {
	n, err := req.storage.HDel(req.arg(0), req.rest(1))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func hexists(req *request) resp.Value {
	ok, err := req.storage.HExists(req.arg(0), req.arg(1))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeBool(ok)
}

func hlen(req *request) resp.Value {
	n, err := req.storage.HLen(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func hincrby(req *request) resp.Value {
	delta, ok := req.int64Arg(2)
	if !ok {
		return errNotInteger
	}

	n, err := req.storage.HIncrBy(req.arg(0), req.arg(1), delta)
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(n)
}

func hincrbyfloat(req *request) resp.Value {
	delta, ok := req.floatArg(2)
	if !ok {
		return errNotFloat
	}

	f, err := req.storage.HIncrByFloat(req.arg(0), req.arg(1), delta)
	if err != nil {
		return makeStorageError(err)
	}
	return makeFloat(f)
}

func hkeys(req *request) resp.Value {
	keys, err := req.storage.HKeys(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeBulkStrings(keys)
}

func hvals(req *request) resp.Value {
	vals, err := req.storage.HVals(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeBulkStrings(vals)
}
