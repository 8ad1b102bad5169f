// Package nativemsg implements the browser native messaging framing: each
// message is a 32-bit length in native byte order followed by that many
// bytes of UTF-8 JSON.
package nativemsg

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
)

// MaxIncoming is the largest frame a host may send to the browser.
const MaxIncoming = 1 << 20

// ErrMessageTooLarge is returned for frames exceeding the size limits.
var ErrMessageTooLarge = errors.New("native message too large")

// Encoder writes framed JSON messages. It is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode marshals v and writes it as a single frame.
func (e *Encoder) Encode(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(payload))
	}

	frame := make([]byte, 4+len(payload))
	binary.NativeEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// Decoder reads framed JSON messages.
type Decoder struct {
	r   io.Reader
	max uint32
}

// NewDecoder returns a decoder that rejects frames over MaxIncoming.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, max: MaxIncoming}
}

// Decode reads the next frame into v. It returns io.EOF when the stream
// ends cleanly between frames.
func (d *Decoder) Decode(v interface{}) error {
	raw, err := d.Next()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return nil
}

// Next reads the next frame and returns its raw payload.
func (d *Decoder) Next() (json.RawMessage, error) {
	var header [4]byte
	if _, err := io.ReadFull(d.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read message length: %w", err)
	}

	n := binary.NativeEndian.Uint32(header[:])
	if n > d.max {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrMessageTooLarge, n, d.max)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return nil, fmt.Errorf("failed to read message body: %w", err)
	}
	return payload, nil
}
