package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eternalApril/moonkv/internal/config"
	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
	"go.uber.org/zap"
)

// Engine coordinates the execution of commands and manages the background tasks of the repository
type Engine struct {
	commands map[string]command // Registry of available commands (the key is the command name in uppercase)
	storage  *storage.Keyspace  // Underlying KV storage
	cfg      *config.Config     // Configuration engine
	stopGC   chan struct{}      // Channel for the background GC stop signal
	gcDone   chan struct{}      // Closed once the GC loop has returned
	stopOnce sync.Once          // Ensures that the stop happens only once
	logger   *zap.Logger
}

// NewEngine initializes the engine, registers the commands, and
// if enabled in the config, starts background cleanup of outdated keys
func NewEngine(ks *storage.Keyspace, cfg *config.Config, logger *zap.Logger) *Engine {
	engine := Engine{
		commands: make(map[string]command),
		storage:  ks,
		cfg:      cfg,
		stopGC:   make(chan struct{}),
		gcDone:   make(chan struct{}),
		logger:   logger,
	}
	engine.registerServerCommands()
	engine.registerGenericCommands()
	engine.registerStringCommands()
	engine.registerHashCommands()
	engine.registerListCommands()
	engine.registerSetCommands()
	engine.registerSortedSetCommands()

	if cfg.GC.Enabled {
		go engine.startGCLoop()
	} else {
		close(engine.gcDone)
	}

	return &engine
}

// startGCLoop triggers the active expiration mechanism
func (e *Engine) startGCLoop() {
	defer close(e.gcDone)

	ticker := time.NewTicker(e.cfg.GC.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.activeExpire()
		case <-e.stopGC:
			e.logger.Info("GC stopped")
			return
		}
	}
}

// activeExpire runs sweep passes while the share of expired keys among the sampled ones stays above the threshold
func (e *Engine) activeExpire() {
	gc := e.cfg.GC
	for round := 0; gc.MaxRounds <= 0 || round < gc.MaxRounds; round++ {
		stats := e.storage.DeleteExpired(gc.SamplesPerCheck)

		if stats > 0 && e.logger.Core().Enabled(zap.DebugLevel) {
			e.logger.Debug("GC delete expired",
				zap.Float64("expired_ratio", stats),
				zap.Int("round", round),
			)
		}

		if stats <= gc.MatchThreshold {
			return
		}
	}
}

// register adds a new command to the engine. The command name is uppercase
func (e *Engine) register(name string, cmd command) {
	e.commands[strings.ToUpper(name)] = cmd
}

// Execute finds the command by name and executes it with the passed arguments.
// If the command is not found, returns an error in the RESP format
func (e *Engine) Execute(name string, args []resp.Value) resp.Value {
	reply, _ := e.dispatch(name, args)
	return reply
}

// dispatch executes the command and also reports whether the connection must be closed after the reply
func (e *Engine) dispatch(name string, args []resp.Value) (resp.Value, bool) {
	name = strings.ToUpper(name)

	if e.logger.Core().Enabled(zap.DebugLevel) {
		// Log the command name and number of args
		e.logger.Debug("executing command",
			zap.String("cmd", name),
			zap.Int("args_count", len(args)),
		)
	}

	cmd, ok := e.commands[name]
	if !ok {
		return resp.MakeError(fmt.Sprintf("ERR unknown command '%s', with args beginning with: %s", name, previewArgs(args))), false
	}

	if !checkArity(name, len(args)) {
		return resp.MakeErrorWrongNumberOfArguments(name), false
	}

	req := &request{
		args:    args,
		storage: e.storage,
	}

	reply := cmd.execute(req)
	return reply, req.closeConn
}

// Shutdown shuts down the engine and its background services correctly
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		close(e.stopGC)
		<-e.gcDone
		e.logger.Info("GC background process stopped")
	})
}

func previewArgs(args []resp.Value) string {
	var b strings.Builder
	for i, a := range resp.MakeArray(args).Args() {
		if i == 8 {
			break
		}
		fmt.Fprintf(&b, "'%s' ", a)
	}
	return b.String()
}
