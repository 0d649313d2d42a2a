// Package input turns a raw terminal byte stream into per-frame input
// state. Keyboard keys use a short hold window so taps registered between
// frames are not lost; pointer position is sticky and carries the last
// reported mouse coordinates.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
const keyHoldDuration = 30 * time.Millisecond

// maxCarry bounds the partial-sequence buffer. A stuck prefix longer than
// this is malformed input, not a torn sequence.
const maxCarry = 32

// Input represents the current frame's input state.
type Input struct {
	Quit      bool
	Left      bool
	Right     bool
	Up        bool
	Down      bool
	Fire      bool
	Click     bool
	WheelUp   bool
	WheelDown bool
	Enter     bool
	Backspace bool
	Delete    bool
	Escape    bool
	Number    int

	// Pointer is the last reported mouse position in 1-based terminal
	// cells. PointerActive stays false until the first mouse event, so
	// keyboard-only sessions keep aiming with the crosshair.
	PointerCol    int
	PointerRow    int
	PointerActive bool

	Pressed []byte
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	quit      time.Time
	left      time.Time
	right     time.Time
	up        time.Time
	down      time.Time
	fire      time.Time
	click     time.Time
	wheelUp   time.Time
	wheelDown time.Time
	enter     time.Time
	backspace time.Time
	delete_   time.Time
	escape    time.Time
	number    time.Time
	numberVal int

	pointerCol  int
	pointerRow  int
	pointerSeen bool
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	state  keyState
	carry  []byte // Incomplete escape sequence from the previous frame
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch:    make(chan byte, 128),
		state: keyState{numberVal: -1},
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader hit EOF or an error.
func (s *Stream) Closed() bool {
	return s.closed
}

// ResetKeyInput clears all held-key state. Called on screen transitions so
// the keypress that triggered the transition does not leak into the next
// screen as a live key.
func ResetKeyInput(s *Stream) {
	pointerCol := s.state.pointerCol
	pointerRow := s.state.pointerRow
	pointerSeen := s.state.pointerSeen
	s.state = keyState{
		numberVal:   -1,
		pointerCol:  pointerCol,
		pointerRow:  pointerRow,
		pointerSeen: pointerSeen,
	}
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles CSI sequences for arrow keys and SGR mouse reports, and uses key
// state persistence to allow detecting simultaneous key combinations.
func ReadInput(s *Stream) Input {
	now := time.Now()
	buf := s.carry
	s.carry = nil

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	// Parse the collected bytes and update key state timestamps
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' {
			consumed, pending := s.parseEscape(buf[i:], now)
			if pending {
				// Tail of a sequence still in flight; finish it next frame.
				if len(buf)-i <= maxCarry {
					s.carry = append(s.carry, buf[i:]...)
				}
				break
			}
			if consumed > 1 {
				i += consumed - 1
				continue
			}
			// Lone escape is the escape key itself.
			s.state.escape = now
			continue
		}

		applyByteToState(&s.state, b, now)
	}

	// Build input from key state - keys are "pressed" if seen within hold duration
	input := Input{
		Quit:          s.closed || now.Sub(s.state.quit) < keyHoldDuration,
		Left:          now.Sub(s.state.left) < keyHoldDuration,
		Right:         now.Sub(s.state.right) < keyHoldDuration,
		Up:            now.Sub(s.state.up) < keyHoldDuration,
		Down:          now.Sub(s.state.down) < keyHoldDuration,
		Fire:          now.Sub(s.state.fire) < keyHoldDuration,
		Click:         now.Sub(s.state.click) < keyHoldDuration,
		WheelUp:       now.Sub(s.state.wheelUp) < keyHoldDuration,
		WheelDown:     now.Sub(s.state.wheelDown) < keyHoldDuration,
		Enter:         now.Sub(s.state.enter) < keyHoldDuration,
		Backspace:     now.Sub(s.state.backspace) < keyHoldDuration,
		Delete:        now.Sub(s.state.delete_) < keyHoldDuration,
		Escape:        now.Sub(s.state.escape) < keyHoldDuration,
		Number:        -1,
		PointerCol:    s.state.pointerCol,
		PointerRow:    s.state.pointerRow,
		PointerActive: s.state.pointerSeen,
		Pressed:       buf,
	}

	// Number is only set if recently pressed
	if now.Sub(s.state.number) < keyHoldDuration {
		input.Number = s.state.numberVal
	}

	return input
}

// parseEscape handles one escape sequence at the start of data (data[0] is
// ESC). Returns the bytes consumed and whether the sequence is incomplete
// and should be carried to the next frame. consumed == 1 means bare escape.
func (s *Stream) parseEscape(data []byte, now time.Time) (consumed int, pending bool) {
	if len(data) < 2 {
		// A torn CSI would arrive with its continuation in the same
		// terminal write; a truly lone trailing ESC is the key.
		return 1, false
	}
	if data[1] != '[' {
		return 1, false
	}
	if len(data) < 3 {
		return 0, true
	}

	if data[2] == '<' {
		return s.parseMouse(data, now)
	}

	switch data[2] {
	case 'A': // Up arrow
		s.state.up = now
		return 3, false
	case 'B': // Down arrow
		s.state.down = now
		return 3, false
	case 'C': // Right arrow
		s.state.right = now
		return 3, false
	case 'D': // Left arrow
		s.state.left = now
		return 3, false
	}

	// Other CSI (function keys, modifiers): scan to the final byte and
	// drop the sequence.
	for i := 2; i < len(data); i++ {
		if data[i] >= 0x40 && data[i] <= 0x7e {
			return i + 1, false
		}
		if i-2 >= maxCarry {
			return i + 1, false
		}
	}
	return 0, true
}

// parseMouse decodes an SGR mouse report: ESC [ < b ; col ; row (M|m).
// M is press or motion, m is release. Bit 5 of b marks motion, bit 6
// marks wheel, the low two bits select the button.
func (s *Stream) parseMouse(data []byte, now time.Time) (consumed int, pending bool) {
	var params [3]int
	p := 0
	i := 3
	for ; i < len(data); i++ {
		c := data[i]
		switch {
		case c >= '0' && c <= '9':
			params[p] = params[p]*10 + int(c-'0')
		case c == ';':
			p++
			if p > 2 {
				return i + 1, false // Malformed, drop
			}
		case c == 'M' || c == 'm':
			if p != 2 {
				return i + 1, false // Malformed, drop
			}
			s.applyMouse(params[0], params[1], params[2], c == 'M', now)
			return i + 1, false
		default:
			return i + 1, false // Malformed, drop
		}
		if i >= maxCarry {
			return i + 1, false
		}
	}
	return 0, true
}

func (s *Stream) applyMouse(b, col, row int, press bool, now time.Time) {
	if col > 0 && row > 0 {
		s.state.pointerCol = col
		s.state.pointerRow = row
		s.state.pointerSeen = true
	}

	const (
		motionBit = 32
		wheelBit  = 64
	)
	switch {
	case b&wheelBit != 0:
		if b&1 == 0 {
			s.state.wheelUp = now
		} else {
			s.state.wheelDown = now
		}
	case b&motionBit != 0:
		// Motion only updates the pointer.
	case press && b&3 == 0:
		s.state.click = now
		s.state.fire = now
	}
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', 0x03: // Ctrl-C arrives as a raw byte in raw mode
		state.quit = now
	case 'a', 'A', 'j', 'J':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case 'w', 'W', 'i', 'I':
		state.up = now
	case 's', 'S', 'k', 'K':
		state.down = now
	case ' ':
		state.fire = now
	case '\n', '\r':
		state.enter = now
	case '\b':
		state.backspace = now
	case '\x7f':
		state.delete_ = now
	case '\x1b':
		state.escape = now
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		state.number = now
		state.numberVal = int(b - '0')
	}
}
