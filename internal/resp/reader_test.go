package resp_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/eternalApril/moonkv/internal/resp"
)

func TestReadInt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{
			name:    "Valid positive",
			input:   ":1000\r\n",
			want:    1000,
			wantErr: nil,
		},
		{
			name:    "Valid positive with +",
			input:   ":+1230\r\n",
			want:    1230,
			wantErr: nil,
		},
		{
			name:    "Valid negative",
			input:   ":-15\r\n",
			want:    -15,
			wantErr: nil,
		},
		{
			name:    "Valid zero",
			input:   ":0\r\n",
			want:    0,
			wantErr: nil,
		},
		{
			name:    "Invalid ending",
			input:   ":1000\n",
			want:    0,
			wantErr: resp.ErrInvalidEnding,
		},
		{
			name:    "Empty",
			input:   ":\r\n",
			want:    0,
			wantErr: resp.ErrInvalidLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resp.NewDecoder(strings.NewReader(tt.input))

			val, err := r.Read()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Read() expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("Read() unexpected error %v", err)
			}

			if val.Type != resp.TypeInteger {
				t.Errorf("Read() type = %v, want %v", val.Type, resp.TypeInteger)
			}

			if val.Integer != tt.want {
				t.Errorf("Read() num = %v, want %v", val.Integer, tt.want)
			}
		})
	}
}

func TestReadCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "Array of bulk strings",
			input: "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n",
			want:  []string{"SET", "key", "value"},
		},
		{
			name:  "Binary safe bulk",
			input: "*2\r\n$4\r\nECHO\r\n$4\r\na\r\nb\r\n",
			want:  []string{"ECHO", "a\r\nb"},
		},
		{
			name:  "Empty bulk",
			input: "*2\r\n$4\r\nECHO\r\n$0\r\n\r\n",
			want:  []string{"ECHO", ""},
		},
		{
			name:  "Inline",
			input: "SET  key value\r\n",
			want:  []string{"SET", "key", "value"},
		},
		{
			name:  "Inline without CR",
			input: "PING\n",
			want:  []string{"PING"},
		},
		{
			name:  "Inline empty line",
			input: "\r\n",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resp.NewDecoder(strings.NewReader(tt.input))

			val, err := r.Read()
			if err != nil {
				t.Fatalf("Read() unexpected error %v", err)
			}
			if val.Type != resp.TypeArray {
				t.Fatalf("Read() type = %c, want array", val.Type)
			}

			got := val.Args()
			if len(got) != len(tt.want) {
				t.Fatalf("Read() args = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Read() arg %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadScalars(t *testing.T) {
	r := resp.NewDecoder(strings.NewReader("+OK\r\n-ERR boom\r\n$-1\r\n*-1\r\n"))

	v, err := r.Read()
	if err != nil || v.Type != resp.TypeSimpleString || string(v.String) != "OK" {
		t.Errorf("simple string: got %+v, %v", v, err)
	}

	v, err = r.Read()
	if err != nil || v.Type != resp.TypeError || string(v.String) != "ERR boom" {
		t.Errorf("error: got %+v, %v", v, err)
	}

	v, err = r.Read()
	if err != nil || v.Type != resp.TypeBulkString || !v.IsNull {
		t.Errorf("nil bulk: got %+v, %v", v, err)
	}

	v, err = r.Read()
	if err != nil || v.Type != resp.TypeArray || !v.IsNull {
		t.Errorf("nil array: got %+v, %v", v, err)
	}

	if _, err = r.Read(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"Bulk bad terminator", "$3\r\nabcXY", resp.ErrInvalidEnding},
		{"Bulk negative length", "$-5\r\n", resp.ErrInvalidLength},
		{"Array too long", "*99999999\r\n", resp.ErrInvalidLength},
		{"Truncated bulk", "$10\r\nabc", io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resp.NewDecoder(strings.NewReader(tt.input)).Read()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Read() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoundTripPipeline(t *testing.T) {
	var stream bytes.Buffer
	commands := [][]string{
		{"RPUSH", "queue", "job1", "job2"},
		{"LPOP", "queue"},
		{"ZADD", "lb", "2600", "alice"},
	}
	enc := resp.NewEncoder(&stream)
	for _, c := range commands {
		args := make([]resp.Value, len(c))
		for i, a := range c {
			args[i] = resp.MakeBulkString(a)
		}
		if err := enc.Write(resp.MakeArray(args)); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}

	r := resp.NewDecoder(&stream)
	for i, c := range commands {
		v, err := r.Read()
		if err != nil {
			t.Fatalf("Read() #%d failed: %v", i, err)
		}
		got := v.Args()
		if strings.Join(got, " ") != strings.Join(c, " ") {
			t.Errorf("Read() #%d = %q, want %q", i, got, c)
		}
		if i < len(commands)-1 && r.Buffered() == 0 {
			t.Errorf("Buffered() = 0 with pipelined commands left")
		}
	}
	if r.Buffered() != 0 {
		t.Errorf("Buffered() = %d after last command", r.Buffered())
	}
}
