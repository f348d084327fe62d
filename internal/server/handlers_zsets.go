package server

import (
	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
)

func (e *Engine) registerSortedSetCommands() {
	e.register("ZADD", commandFunc(zadd))
	e.register("ZINCRBY", commandFunc(zincrby))
	e.register("ZRANGE", zrangeCommand(true))
	e.register("ZREVRANGE", zrangeCommand(false))
	e.register("ZRANGEBYSCORE", commandFunc(zrangebyscore))
	e.register("ZRANK", zrankCommand(true))
	e.register("ZREVRANK", zrankCommand(false))
	e.register("ZSCORE", commandFunc(zscore))
	e.register("ZCOUNT", commandFunc(zcount))
	e.register("ZCARD", commandFunc(zcard))
	e.register("ZREM", commandFunc(zrem))
}

// zadd serves ZADD key score member [score member ...]
func zadd(req *request) resp.Value {
	if len(req.args)%2 != 1 {
		return errSyntax
	}

	members := make([]storage.ScoredMember, 0, len(req.args)/2)
	for i := 1; i < len(req.args); i += 2 {
		score, ok := req.floatArg(i)
		if !ok {
			return errNotFloat
		}
		members = append(members, storage.ScoredMember{Member: req.arg(i + 1), Score: score})
	}

	n, err := req.storage.ZAdd(req.arg(0), members...)
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func zincrby(req *request) resp.Value {
	delta, ok := req.floatArg(1)
	if !ok {
		return errNotFloat
	}

	score, err := req.storage.ZIncrBy(req.arg(0), delta, req.arg(2))
	if err != nil {
		return makeStorageError(err)
	}
	return makeFloat(score)
}

// zrangeCommand builds ZRANGE key start stop [REV] [WITHSCORES] and ZREVRANGE key start stop [WITHSCORES]
func zrangeCommand(ascending bool) commandFunc {
	return func(req *request) resp.Value {
		start, ok1 := req.intArg(1)
		stop, ok2 := req.intArg(2)
		if !ok1 || !ok2 {
			return errNotInteger
		}

		asc, withScores := ascending, false
		for i := 3; i < len(req.args); i++ {
			switch req.option(i) {
			case "WITHSCORES":
				withScores = true
			case "REV":
				if !ascending {
					return errSyntax
				}
				asc = false
			default:
				return errSyntax
			}
		}

		items, err := req.storage.ZRange(req.arg(0), start, stop, asc)
		if err != nil {
			return makeStorageError(err)
		}
		return makeScoredMembers(items, withScores)
	}
}

// zrangebyscore serves ZRANGEBYSCORE key min max [WITHSCORES] [LIMIT offset count]
func zrangebyscore(req *request) resp.Value {
	min, ok1 := parseScoreBound(req.arg(1))
	max, ok2 := parseScoreBound(req.arg(2))
	if !ok1 || !ok2 {
		return errMinMaxFloat
	}

	withScores := false
	offset, count := 0, -1
	for i := 3; i < len(req.args); i++ {
		switch req.option(i) {
		case "WITHSCORES":
			withScores = true
		case "LIMIT":
			if i+2 >= len(req.args) {
				return errSyntax
			}
			var ok bool
			if offset, ok = req.intArg(i + 1); !ok {
				return errNotInteger
			}
			if count, ok = req.intArg(i + 2); !ok {
				return errNotInteger
			}
			i += 2
		default:
			return errSyntax
		}
	}

	items, err := req.storage.ZRangeByScore(req.arg(0), min, max)
	if err != nil {
		return makeStorageError(err)
	}

	// negative offset yields nothing, negative count means all remaining
	switch {
	case offset < 0 || offset >= len(items):
		items = nil
	default:
		items = items[offset:]
		if count >= 0 && count < len(items) {
			items = items[:count]
		}
	}

	return makeScoredMembers(items, withScores)
}

func zrankCommand(ascending bool) commandFunc {
	return func(req *request) resp.Value {
		rank, ok, err := req.storage.ZRank(req.arg(0), req.arg(1), ascending)
		if err != nil {
			return makeStorageError(err)
		}
		if !ok {
			return resp.MakeNilBulkString()
		}
		return resp.MakeInteger(int64(rank))
	}
}

func zscore(req *request) resp.Value {
	score, ok, err := req.storage.ZScore(req.arg(0), req.arg(1))
	if err != nil {
		return makeStorageError(err)
	}
	if !ok {
		return resp.MakeNilBulkString()
	}
	return makeFloat(score)
}

func zcount(req *request) resp.Value {
	min, ok1 := parseScoreBound(req.arg(1))
	max, ok2 := parseScoreBound(req.arg(2))
	if !ok1 || !ok2 {
		return errMinMaxFloat
	}

	n, err := req.storage.ZCount(req.arg(0), min, max)
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func zcard(req *request) resp.Value {
	n, err := req.storage.ZCard(req.arg(0))
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func zrem(req *request) resp.Value {
	n, err := req.storage.ZRem(req.arg(0), req.rest(1)...)
	if err != nil {
		return makeStorageError(err)
	}
	return resp.MakeInteger(int64(n))
}
