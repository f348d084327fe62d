package server

import (
	"strings"

	"github.com/eternalApril/moonkv/internal/resp"
)

func (e *Engine) registerServerCommands() {
	e.register("PING", commandFunc(ping))
	e.register("ECHO", commandFunc(echo))
	e.register("COMMAND", commandFunc(cmd))
	e.register("DBSIZE", commandFunc(dbsize))
	e.register("QUIT", commandFunc(quit))
}

// ping replies PONG, or echoes the optional message
func ping(req *request) resp.Value {
	switch len(req.args) {
	case 0:
		return resp.MakeSimpleString("PONG")
	case 1:
		return resp.MakeBulkString(req.arg(0))
	default:
		return resp.MakeErrorWrongNumberOfArguments("PING")
	}
}

func echo(req *request) resp.Value {
	return resp.MakeBulkString(req.arg(0))
}

// cmd serves COMMAND, COMMAND COUNT, COMMAND INFO and COMMAND DOCS
func cmd(req *request) resp.Value {
	if len(req.args) == 0 {
		return getAllCommands()
	}

	switch req.option(0) {
	case "COUNT":
		return resp.MakeInteger(int64(len(commandRegistry)))
	case "INFO":
		return getCommandsInfo(req.rest(1))
	case "DOCS":
		return getCommandsDocs(req.rest(1))
	default:
		return resp.MakeError("ERR unknown subcommand '" + strings.ToLower(req.arg(0)) + "'")
	}
}

func dbsize(req *request) resp.Value {
	return resp.MakeInteger(int64(req.storage.Size()))
}

// quit replies OK and asks the connection to close after the reply
func quit(req *request) resp.Value {
	req.closeConn = true
	return resp.MakeOK()
}
