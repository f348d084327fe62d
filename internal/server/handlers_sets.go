package server

import (
	"github.com/eternalApril/moonkv/internal/resp"
)

func (e *Engine) registerSetCommands() {
	e.register("SADD", commandFunc(sadd))
	e.register("SMEMBERS", commandFunc(smembers))
	e.register("SISMEMBER", commandFunc(sismember))
	e.register("SCARD", commandFunc(scard))
	e.register("SREM", commandFunc(srem))
	e.register("SINTER", commandFunc(sinter))
	e.register("SUNION", commandFunc(sunion))
	e.register("SDIFF", commandFunc(sdiff))
	e.register("SRANDMEMBER", commandFunc(srandmember))
	e.register("SPOP", commandFunc(spop))
}

func sadd(req *request) resp.Value {
	n, err := req.storage.SAdd(req.arg(0), req.rest(1)...)
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func smembers(req *request) resp.Value {
	return makeMembers(req.storage.SMembers(req.arg(0)))
}

func sismember(req *request) resp.Value {
	ok, err := req.storage.SIsMember(req.arg(0), req.arg(1))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeBool(ok)
}

func scard(req *request) resp.Value {
	n, err := req.storage.SCard(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func srem(req *request) resp.Value {
	n, err := req.storage.SRem(req.arg(0), req.rest(1)...)
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func sinter(req *request) resp.Value {
	return makeMembers(req.storage.SInter(req.rest(0)...))
}

func sunion(req *request) resp.Value {
	return makeMembers(req.storage.SUnion(req.rest(0)...))
}

func sdiff(req *request) resp.Value {
	return makeMembers(req.storage.SDiff(req.rest(0)...))
}

func srandmember(req *request) resp.Value {
	m, ok, err := req.storage.SRandMember(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return makeOptional(m, ok)
}

func spop(req *request) resp.Value {
	m, ok, err := req.storage.SPop(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return makeOptional(m, ok)
}

func makeMembers(members []string, err error) resp.Value {
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeBulkStrings(members)
}
