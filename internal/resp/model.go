package resp

const (
	TypeSimpleString = '+'
	TypeError        = '-'
	TypeInteger      = ':'
	TypeBulkString   = '$'
	TypeArray        = '*'
)

type Value struct {
	String  []byte // SimpleString, Error, BulkString
	Array   []Value
	Integer int64 // Integer
	Type    byte
	IsNull  bool // For nil BulkString and nil Array
}

// Args returns the elements of a command array as strings
func (v Value) Args() []string {
	out := make([]string, len(v.Array))
	for i, el := range v.Array {
		out[i] = string(el.String)
	}
	return out
}
