package resp

import (
	"fmt"
	"strings"
)

// MakeSimpleString construct SimpleString Value from string
func MakeSimpleString(s string) Value {
	return Value{
		Type:   TypeSimpleString,
		String: []byte(s),
	}
}

// MakeOK construct the +OK reply
func MakeOK() Value {
	return MakeSimpleString("OK")
}

// MakeError construct Error Value from string
func MakeError(s string) Value {
	return Value{
		Type:   TypeError,
		String: []byte(s),
	}
}

// MakeErrorWrongNumberOfArguments construct Error Value that command had wrong number of arguments for command
func MakeErrorWrongNumberOfArguments(cmd string) Value {
	return MakeError(fmt.Sprintf("ERR wrong number of arguments for '%s' command", strings.ToLower(cmd)))
}

// MakeBulkString construct BulkString Value from string
func MakeBulkString(s string) Value {
	return Value{
		Type:   TypeBulkString,
		String: []byte(s),
	}
}

// MakeNilBulkString construct nil BulkSting Value
func MakeNilBulkString() Value {
	return Value{
		Type:   TypeBulkString,
		IsNull: true,
	}
}

// MakeInteger construct Integer Value from int64
func MakeInteger(n int64) Value {
	return Value{
		Type:    TypeInteger,
		Integer: n,
	}
}

// MakeBool construct the :1 / :0 reply
func MakeBool(b bool) Value {
	if b {
		return MakeInteger(1)
	}
	return MakeInteger(0)
}

// MakeArray creates a standard RESP array containing the provided elements
func MakeArray(values []Value) Value {
	return Value{
		Type:  TypeArray,
		Array: values,
	}
}

// MakeNullArray construct nil Array Value
func MakeNullArray() Value {
	return Value{
		Type:   TypeArray,
		IsNull: true,
	}
}

// MakeBulkStrings creates an array of bulk strings
func MakeBulkStrings(ss []string) Value {
	vals := make([]Value, len(ss))
	for i, s := range ss {
		vals[i] = MakeBulkString(s)
	}
	return MakeArray(vals)
}

// MakeNullableBulkStrings creates an array of bulk strings where nil entries become nil bulk strings
func MakeNullableBulkStrings(ss []*string) Value {
	vals := make([]Value, len(ss))
	for i, s := range ss {
		if s == nil {
			vals[i] = MakeNilBulkString()
		} else {
			vals[i] = MakeBulkString(*s)
		}
	}
	return MakeArray(vals)
}
