package nativemsg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestEncode_Framing(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(map[string]string{"method": "remove"}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	raw := buf.Bytes()
	want := `{"method":"remove"}`
	if n := binary.NativeEndian.Uint32(raw[:4]); int(n) != len(want) {
		t.Errorf("length prefix = %d, want %d", n, len(want))
	}
	if got := string(raw[4:]); got != want {
		t.Errorf("payload = %s, want %s", got, want)
	}
}

func TestDecode_Stream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	_ = enc.Encode(map[string]int{"seq": 1})
	_ = enc.Encode(map[string]int{"seq": 2})

	dec := NewDecoder(&buf)
	for want := 1; want <= 2; want++ {
		var msg struct{ Seq int }
		if err := dec.Decode(&msg); err != nil {
			t.Fatalf("Decode() #%d error = %v", want, err)
		}
		if msg.Seq != want {
			t.Errorf("Decode() seq = %d, want %d", msg.Seq, want)
		}
	}

	var msg struct{}
	if err := dec.Decode(&msg); err != io.EOF {
		t.Errorf("Decode() at end error = %v, want io.EOF", err)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	var header [4]byte
	binary.NativeEndian.PutUint32(header[:], MaxIncoming+1)

	_, err := NewDecoder(bytes.NewReader(header[:])).Next()
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("Next() error = %v, want ErrMessageTooLarge", err)
	}
}

func TestDecode_Truncated(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	binary.NativeEndian.PutUint32(header[:], 10)
	buf.Write(header[:])
	buf.WriteString("{}")

	_, err := NewDecoder(&buf).Next()
	if err == nil || err == io.EOF {
		t.Errorf("Next() error = %v, want a truncation error", err)
	}
}
