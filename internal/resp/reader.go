package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

const (
	maxBulkLength  = 512 << 20 // same limit as proto-max-bulk-len
	maxArrayLength = 1 << 20
)

var (
	ErrInvalidEnding = errors.New("invalid line ending")
	ErrInvalidLength = errors.New("invalid length")
	ErrInvalidType   = errors.New("unexpected type")
	ErrLineTooLong   = errors.New("line too long")
)

// Decoder reads RESP2 values from a stream.
// Besides regular arrays it accepts inline commands: a plain line of space separated words
type Decoder struct {
	rd *bufio.Reader
}

// NewDecoder initializes a Decoder with a buffered reader
func NewDecoder(rd io.Reader) *Decoder {
	return &Decoder{rd: bufio.NewReader(rd)}
}

// Buffered returns the number of bytes already read from the stream but not decoded yet
func (d *Decoder) Buffered() int {
	return d.rd.Buffered()
}

// Read decodes the next value. Inline commands are returned as an array of bulk strings
func (d *Decoder) Read() (Value, error) {
	prefix, err := d.rd.ReadByte()
	if err != nil {
		return Value{}, err
	}

	switch prefix {
	case TypeSimpleString, TypeError:
		line, err := d.readLine()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: prefix, String: line}, nil

	case TypeInteger:
		n, err := d.readInteger()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: TypeInteger, Integer: n}, nil

	case TypeBulkString:
		return d.readBulkString()

	case TypeArray:
		return d.readArray()
	}

	if err := d.rd.UnreadByte(); err != nil {
		return Value{}, err
	}
	return d.readInline()
}

// readLine reads up to CRLF and returns the line without it
func (d *Decoder) readLine() ([]byte, error) {
	line, err := d.rd.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return nil, ErrLineTooLong
	}
	if err != nil {
		return nil, err
	}

	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, ErrInvalidEnding
	}

	// ReadSlice points into the buffer, which is overwritten by the next read
	return bytes.Clone(line[:len(line)-2]), nil
}

func (d *Decoder) readInteger() (int64, error) {
	line, err := d.readLine()
	if err != nil {
		return 0, err
	}

	// Command with integer cant be empty
	if len(line) == 0 {
		return 0, ErrInvalidLength
	}

	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse integer")
	}
	return n, nil
}

// readLength reads the header of a bulk string or array, -1 means null
func (d *Decoder) readLength(limit int64) (int, error) {
	n, err := d.readInteger()
	if err != nil {
		return 0, err
	}
	if n < -1 || n > limit {
		return 0, errors.Wrapf(ErrInvalidLength, "%d", n)
	}
	return int(n), nil
}

func (d *Decoder) readBulkString() (Value, error) {
	n, err := d.readLength(maxBulkLength)
	if err != nil {
		return Value{}, err
	}
	if n == -1 {
		return MakeNilBulkString(), nil
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(d.rd, buf); err != nil {
		return Value{}, err
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return Value{}, ErrInvalidEnding
	}

	return Value{Type: TypeBulkString, String: buf[:n]}, nil
}

func (d *Decoder) readArray() (Value, error) {
	n, err := d.readLength(maxArrayLength)
	if err != nil {
		return Value{}, err
	}
	if n == -1 {
		return MakeNullArray(), nil
	}

	// the header is untrusted, grow as elements actually arrive
	arr := make([]Value, 0, min(n, 64))
	for i := 0; i < n; i++ {
		v, err := d.Read()
		if err != nil {
			return Value{}, err
		}
		arr = append(arr, v)
	}

	return MakeArray(arr), nil
}

// readInline parses a line like "SET key value\r\n" as sent by telnet
func (d *Decoder) readInline() (Value, error) {
	line, err := d.rd.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return Value{}, ErrLineTooLong
	}
	if err != nil {
		return Value{}, err
	}

	fields := bytes.Fields(line)
	arr := make([]Value, len(fields))
	for i, f := range fields {
		arr[i] = Value{Type: TypeBulkString, String: bytes.Clone(f)}
	}
	return MakeArray(arr), nil
}
