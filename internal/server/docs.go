package server

import (
	"strings"

	"github.com/eternalApril/moonkv/internal/resp"
)

type commandMetadata struct {
	arity    int      // Arity includes the command name itself
	flags    []string // read, write, fast, denyoom, etc
	firstKey int      // 1-based index of the first key
	lastKey  int      // 1-based index of the last key
	step     int      // Step count for finding keys
}

var (
	flagsRead          = []string{"readonly"}
	flagsReadFast      = []string{"readonly", "fast"}
	flagsWrite         = []string{"write"}
	flagsWriteFast     = []string{"write", "fast"}
	flagsWriteGrow     = []string{"write", "denyoom"}
	flagsWriteGrowFast = []string{"write", "denyoom", "fast"}
)

var (
	commandRegistry = map[string]commandMetadata{
		// connection and server
		"PING":    {-1, []string{"fast", "stale"}, 0, 0, 0},
		"ECHO":    {2, []string{"fast"}, 0, 0, 0},
		"COMMAND": {-1, []string{"random", "loading", "stale"}, 0, 0, 0},
		"DBSIZE":  {1, flagsReadFast, 0, 0, 0},
		"QUIT":    {-1, []string{"fast", "stale"}, 0, 0, 0},

		// generic
		"TYPE":      {2, flagsReadFast, 1, 1, 1},
		"EXISTS":    {-2, flagsReadFast, 1, -1, 1},
		"DEL":       {-2, flagsWrite, 1, -1, 1},
		"UNLINK":    {-2, flagsWriteFast, 1, -1, 1},
		"RENAME":    {3, flagsWrite, 1, 2, 1},
		"EXPIRE":    {3, flagsWriteFast, 1, 1, 1},
		"PEXPIRE":   {3, flagsWriteFast, 1, 1, 1},
		"EXPIREAT":  {3, flagsWriteFast, 1, 1, 1},
		"PEXPIREAT": {3, flagsWriteFast, 1, 1, 1},
		"PERSIST":   {2, flagsWriteFast, 1, 1, 1},
		"TTL":       {2, flagsReadFast, 1, 1, 1},
		"PTTL":      {2, flagsReadFast, 1, 1, 1},
		"SCAN":      {-2, flagsRead, 0, 0, 0},

		// string
		"SET":         {-3, flagsWriteGrow, 1, 1, 1},
		"GET":         {2, flagsReadFast, 1, 1, 1},
		"SETNX":       {3, flagsWriteGrowFast, 1, 1, 1},
		"MSET":        {-3, flagsWriteGrow, 1, -1, 2},
		"MGET":        {-2, flagsReadFast, 1, -1, 1},
		"INCR":        {2, flagsWriteGrowFast, 1, 1, 1},
		"DECR":        {2, flagsWriteGrowFast, 1, 1, 1},
		"INCRBY":      {3, flagsWriteGrowFast, 1, 1, 1},
		"DECRBY":      {3, flagsWriteGrowFast, 1, 1, 1},
		"INCRBYFLOAT": {3, flagsWriteGrowFast, 1, 1, 1},
		"APPEND":      {3, flagsWriteGrow, 1, 1, 1},
		"STRLEN":      {2, flagsReadFast, 1, 1, 1},

		// hash
		"HSET":         {-4, flagsWriteGrowFast, 1, 1, 1},
		"HSETNX":       {4, flagsWriteGrowFast, 1, 1, 1},
		"HGET":         {3, flagsReadFast, 1, 1, 1},
		"HMGET":        {-3, flagsReadFast, 1, 1, 1},
		"HGETALL":      {2, flagsRead, 1, 1, 1},
		"HDEL":         {-3, flagsWriteFast, 1, 1, 1},
		"HEXISTS":      {3, flagsReadFast, 1, 1, 1},
		"HLEN":         {2, flagsReadFast, 1, 1, 1},
		"HINCRBY":      {4, flagsWriteGrowFast, 1, 1, 1},
		"HINCRBYFLOAT": {4, flagsWriteGrowFast, 1, 1, 1},
		"HKEYS":        {2, flagsRead, 1, 1, 1},
		"HVALS":        {2, flagsRead, 1, 1, 1},

		// list
		"LPUSH":     {-3, flagsWriteGrowFast, 1, 1, 1},
		"RPUSH":     {-3, flagsWriteGrowFast, 1, 1, 1},
		"LPOP":      {2, flagsWriteFast, 1, 1, 1},
		"RPOP":      {2, flagsWriteFast, 1, 1, 1},
		"LRANGE":    {4, flagsRead, 1, 1, 1},
		"LLEN":      {2, flagsReadFast, 1, 1, 1},
		"LINDEX":    {3, flagsRead, 1, 1, 1},
		"LSET":      {4, flagsWriteGrow, 1, 1, 1},
		"LINSERT":   {5, flagsWriteGrow, 1, 1, 1},
		"LREM":      {4, flagsWrite, 1, 1, 1},
		"LTRIM":     {4, flagsWrite, 1, 1, 1},
		"LMOVE":     {5, flagsWriteGrow, 1, 2, 1},
		"RPOPLPUSH": {3, flagsWriteGrow, 1, 2, 1},

		// set
		"SADD":        {-3, flagsWriteGrowFast, 1, 1, 1},
		"SMEMBERS":    {2, flagsRead, 1, 1, 1},
		"SISMEMBER":   {3, flagsReadFast, 1, 1, 1},
		"SCARD":       {2, flagsReadFast, 1, 1, 1},
		"SREM":        {-3, flagsWriteFast, 1, 1, 1},
		"SINTER":      {-2, flagsRead, 1, -1, 1},
		"SUNION":      {-2, flagsRead, 1, -1, 1},
		"SDIFF":       {-2, flagsRead, 1, -1, 1},
		"SRANDMEMBER": {2, []string{"readonly", "random"}, 1, 1, 1},
		"SPOP":        {2, []string{"write", "random", "fast"}, 1, 1, 1},

		// sorted set
		"ZADD":          {-4, flagsWriteGrowFast, 1, 1, 1},
		"ZINCRBY":       {4, flagsWriteGrowFast, 1, 1, 1},
		"ZRANGE":        {-4, flagsRead, 1, 1, 1},
		"ZREVRANGE":     {-4, flagsRead, 1, 1, 1},
		"ZRANGEBYSCORE": {-4, flagsRead, 1, 1, 1},
		"ZRANK":         {3, flagsReadFast, 1, 1, 1},
		"ZREVRANK":      {3, flagsReadFast, 1, 1, 1},
		"ZSCORE":        {3, flagsReadFast, 1, 1, 1},
		"ZCOUNT":        {4, flagsReadFast, 1, 1, 1},
		"ZCARD":         {2, flagsReadFast, 1, 1, 1},
		"ZREM":          {-3, flagsWriteFast, 1, 1, 1},
	}
)

// checkArity reports whether argc arguments (without the command name) satisfy the registered arity
func checkArity(name string, argc int) bool {
	meta, ok := commandRegistry[name]
	if !ok {
		return true
	}
	if meta.arity >= 0 {
		return argc+1 == meta.arity
	}
	return argc+1 >= -meta.arity
}

// commandDoc stores a description for the command
type commandDoc struct {
	summary    string
	complexity string
	group      string
	since      string
}

// commandDocsRegistry documentation registry
var commandDocsRegistry = map[string]commandDoc{
	"PING":    {"Ping the server.", "O(1)", "connection", "1.0.0"},
	"ECHO":    {"Returns the given string.", "O(1)", "connection", "1.0.0"},
	"COMMAND": {"Get array of command details.", "O(N) where N is the number of commands to look up.", "server", "2.8.13"},
	"DBSIZE":  {"Returns the number of keys in the database.", "O(N) where N is the number of keys with a TTL.", "server", "1.0.0"},
	"QUIT":    {"Closes the connection.", "O(1)", "connection", "1.0.0"},

	"TYPE":      {"Determines the type of value stored at a key.", "O(1)", "generic", "1.0.0"},
	"EXISTS":    {"Determines whether one or more keys exist.", "O(N) where N is the number of keys to check.", "generic", "1.0.0"},
	"DEL":       {"Deletes one or more keys.", "O(N) where N is the number of keys that will be removed.", "generic", "1.0.0"},
	"UNLINK":    {"Deletes one or more keys.", "O(N) where N is the number of keys that will be removed.", "generic", "4.0.0"},
	"RENAME":    {"Renames a key and overwrites the destination.", "O(1)", "generic", "1.0.0"},
	"EXPIRE":    {"Sets the expiration time of a key in seconds.", "O(1)", "generic", "1.0.0"},
	"PEXPIRE":   {"Sets the expiration time of a key in milliseconds.", "O(1)", "generic", "2.6.0"},
	"EXPIREAT":  {"Sets the expiration time of a key to a Unix timestamp.", "O(1)", "generic", "1.2.0"},
	"PEXPIREAT": {"Sets the expiration time of a key to a Unix milliseconds timestamp.", "O(1)", "generic", "2.6.0"},
	"PERSIST":   {"Remove the expiration from a key.", "O(1)", "generic", "2.2.0"},
	"TTL":       {"Get the time to live for a key in seconds.", "O(1)", "generic", "1.0.0"},
	"PTTL":      {"Get the time to live for a key in milliseconds.", "O(1)", "generic", "2.6.0"},
	"SCAN":      {"Iterates over the key names in the database.", "O(1) for every call. O(N) for a complete iteration.", "generic", "2.8.0"},

	"SET":         {"Set the string value of a key.", "O(1)", "string", "1.0.0"},
	"GET":         {"Get the value of a key.", "O(1)", "string", "1.0.0"},
	"SETNX":       {"Set the string value of a key only when the key doesn't exist.", "O(1)", "string", "1.0.0"},
	"MSET":        {"Atomically creates or modifies the string values of one or more keys.", "O(N) where N is the number of keys to set.", "string", "1.0.1"},
	"MGET":        {"Atomically returns the string values of one or more keys.", "O(N) where N is the number of keys to retrieve.", "string", "1.0.0"},
	"INCR":        {"Increments the integer value of a key by one.", "O(1)", "string", "1.0.0"},
	"DECR":        {"Decrements the integer value of a key by one.", "O(1)", "string", "1.0.0"},
	"INCRBY":      {"Increments the integer value of a key by a number.", "O(1)", "string", "1.0.0"},
	"DECRBY":      {"Decrements a number from the integer value of a key.", "O(1)", "string", "1.0.0"},
	"INCRBYFLOAT": {"Increment the floating point value of a key by a number.", "O(1)", "string", "2.6.0"},
	"APPEND":      {"Appends a string to the value of a key.", "O(1)", "string", "2.0.0"},
	"STRLEN":      {"Returns the length of a string value.", "O(1)", "string", "2.2.0"},

	"HSET":         {"Creates or modifies the value of a field in a hash.", "O(N) where N is the number of field/value pairs being set.", "hash", "2.0.0"},
	"HSETNX":       {"Sets the value of a field in a hash only when the field doesn't exist.", "O(1)", "hash", "2.0.0"},
	"HGET":         {"Returns the value of a field in a hash.", "O(1)", "hash", "2.0.0"},
	"HMGET":        {"Returns the values of all fields in a hash.", "O(N) where N is the number of fields being requested.", "hash", "2.0.0"},
	"HGETALL":      {"Returns all fields and values in a hash.", "O(N) where N is the size of the hash.", "hash", "2.0.0"},
	"HDEL":         {"Deletes one or more fields and their values from a hash.", "O(N) where N is the number of fields to be removed.", "hash", "2.0.0"},
	"HEXISTS":      {"Determines whether a field exists in a hash.", "O(1)", "hash", "2.0.0"},
	"HLEN":         {"Returns the number of fields in a hash.", "O(1)", "hash", "2.0.0"},
	"HINCRBY":      {"Increments the integer value of a field in a hash by a number.", "O(1)", "hash", "2.0.0"},
	"HINCRBYFLOAT": {"Increments the floating point value of a field by a number.", "O(1)", "hash", "2.6.0"},
	"HKEYS":        {"Returns all fields in a hash.", "O(N) where N is the size of the hash.", "hash", "2.0.0"},
	"HVALS":        {"Returns all values in a hash.", "O(N) where N is the size of the hash.", "hash", "2.0.0"},

	"LPUSH":     {"Prepends one or more elements to a list.", "O(N) where N is the number of elements pushed.", "list", "1.0.0"},
	"RPUSH":     {"Appends one or more elements to a list.", "O(N) where N is the number of elements pushed.", "list", "1.0.0"},
	"LPOP":      {"Returns the first element of a list after removing it.", "O(1)", "list", "1.0.0"},
	"RPOP":      {"Returns and removes the last element of a list.", "O(1)", "list", "1.0.0"},
	"LRANGE":    {"Returns a range of elements from a list.", "O(S+N) where S is the start offset and N the number of elements.", "list", "1.0.0"},
	"LLEN":      {"Returns the length of a list.", "O(1)", "list", "1.0.0"},
	"LINDEX":    {"Returns an element from a list by its index.", "O(N) where N is the number of elements to traverse.", "list", "1.0.0"},
	"LSET":      {"Sets the value of an element in a list by its index.", "O(N) where N is the length of the list.", "list", "1.0.0"},
	"LINSERT":   {"Inserts an element before or after another element in a list.", "O(N) where N is the number of elements to traverse.", "list", "2.2.0"},
	"LREM":      {"Removes elements from a list.", "O(N+M) where N is the length of the list and M the number of elements removed.", "list", "1.0.0"},
	"LTRIM":     {"Removes elements from both ends a list.", "O(N) where N is the number of elements removed.", "list", "1.0.0"},
	"LMOVE":     {"Returns an element after popping it from one list and pushing it to another.", "O(1)", "list", "6.2.0"},
	"RPOPLPUSH": {"Returns the last element of a list after removing and pushing it to another list.", "O(1)", "list", "1.2.0"},

	"SADD":        {"Adds one or more members to a set.", "O(N) where N is the number of members to be added.", "set", "1.0.0"},
	"SMEMBERS":    {"Returns all members of a set.", "O(N) where N is the set cardinality.", "set", "1.0.0"},
	"SISMEMBER":   {"Determines whether a member belongs to a set.", "O(1)", "set", "1.0.0"},
	"SCARD":       {"Returns the number of members in a set.", "O(1)", "set", "1.0.0"},
	"SREM":        {"Removes one or more members from a set.", "O(N) where N is the number of members to be removed.", "set", "1.0.0"},
	"SINTER":      {"Returns the intersect of multiple sets.", "O(N*M) worst case where N is the smallest set and M the number of sets.", "set", "1.0.0"},
	"SUNION":      {"Returns the union of multiple sets.", "O(N) where N is the total number of elements in all given sets.", "set", "1.0.0"},
	"SDIFF":       {"Returns the difference of multiple sets.", "O(N) where N is the total number of elements in all given sets.", "set", "1.0.0"},
	"SRANDMEMBER": {"Get a random member from a set.", "O(1)", "set", "1.0.0"},
	"SPOP":        {"Returns a random member from a set after removing it.", "O(1)", "set", "1.0.0"},

	"ZADD":          {"Adds one or more members to a sorted set, or updates their scores.", "O(N) for each item added.", "sorted-set", "1.2.0"},
	"ZINCRBY":       {"Increments the score of a member in a sorted set.", "O(N) where N is the number of elements in the sorted set.", "sorted-set", "1.2.0"},
	"ZRANGE":        {"Returns members in a sorted set within a range of indexes.", "O(log(N)+M) with M the number of elements returned.", "sorted-set", "1.2.0"},
	"ZREVRANGE":     {"Returns members in a sorted set within a range of indexes in reverse order.", "O(log(N)+M) with M the number of elements returned.", "sorted-set", "1.2.0"},
	"ZRANGEBYSCORE": {"Returns members in a sorted set within a range of scores.", "O(log(N)+M) with M the number of elements returned.", "sorted-set", "1.0.5"},
	"ZRANK":         {"Returns the index of a member in a sorted set ordered by ascending scores.", "O(log(N))", "sorted-set", "2.0.0"},
	"ZREVRANK":      {"Returns the index of a member in a sorted set ordered by descending scores.", "O(log(N))", "sorted-set", "2.0.0"},
	"ZSCORE":        {"Returns the score of a member in a sorted set.", "O(1)", "sorted-set", "1.2.0"},
	"ZCOUNT":        {"Returns the count of members in a sorted set that have scores within a range.", "O(log(N))", "sorted-set", "2.0.0"},
	"ZCARD":         {"Returns the number of members in a sorted set.", "O(1)", "sorted-set", "1.2.0"},
	"ZREM":          {"Removes one or more members from a sorted set.", "O(M*N) with N the number of elements and M the number removed.", "sorted-set", "1.2.0"},
}

func makeFlagsArray(flags []string) resp.Value {
	vals := make([]resp.Value, len(flags))
	for i, f := range flags {
		vals[i] = resp.MakeSimpleString(f)
	}
	return resp.MakeArray(vals)
}

func makeInfoCmdArray(name string) []resp.Value {
	meta := commandRegistry[name]
	return []resp.Value{
		resp.MakeBulkString(strings.ToLower(name)),
		resp.MakeInteger(int64(meta.arity)),
		makeFlagsArray(meta.flags),
		resp.MakeInteger(int64(meta.firstKey)),
		resp.MakeInteger(int64(meta.lastKey)),
		resp.MakeInteger(int64(meta.step)),
	}
}

func getAllCommands() resp.Value {
	cmdArray := make([]resp.Value, 0, len(commandRegistry))
	for name := range commandRegistry {
		details := makeInfoCmdArray(name)
		cmdArray = append(cmdArray, resp.MakeArray(details))
	}
	return resp.MakeArray(cmdArray)
}

// getCommandsInfo returns the details of the named commands, nil for unknown names
func getCommandsInfo(names []string) resp.Value {
	cmdArray := make([]resp.Value, 0, len(names))
	for _, name := range names {
		name = strings.ToUpper(name)
		if _, ok := commandRegistry[name]; !ok {
			cmdArray = append(cmdArray, resp.MakeNullArray())
			continue
		}
		cmdArray = append(cmdArray, resp.MakeArray(makeInfoCmdArray(name)))
	}
	return resp.MakeArray(cmdArray)
}

// getCommandsDocs returns documentation for specified commands or all commands
// Format: [Name, [Summary, val, Since, val...], Name, [...]]
func getCommandsDocs(names []string) resp.Value {
	var targets []string

	if len(names) == 0 {
		targets = make([]string, 0, len(commandDocsRegistry))
		for name := range commandDocsRegistry {
			targets = append(targets, name)
		}
	} else {
		targets = make([]string, 0, len(names))
		for _, name := range names {
			targets = append(targets, strings.ToUpper(name))
		}
	}

	result := make([]resp.Value, 0, len(targets)*2)

	for _, name := range targets {
		doc, ok := commandDocsRegistry[name]
		if !ok {
			continue
		}

		result = append(result, resp.MakeBulkString(strings.ToLower(name)))

		props := []resp.Value{
			resp.MakeBulkString("summary"),
			resp.MakeBulkString(doc.summary),
			resp.MakeBulkString("since"),
			resp.MakeBulkString(doc.since),
			resp.MakeBulkString("group"),
			resp.MakeBulkString(doc.group),
			resp.MakeBulkString("complexity"),
			resp.MakeBulkString(doc.complexity),
		}

		result = append(result, resp.MakeArray(props))
	}

	return resp.MakeArray(result)
}
