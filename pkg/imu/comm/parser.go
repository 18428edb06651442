package comm

import "fmt"

// Phase is the coarse position of the parser within a frame.
type Phase int

const (
	// PhaseSeek means looking for the sync marker.
	PhaseSeek Phase = iota
	// PhaseHeader means reading command, length and status.
	PhaseHeader
	// PhaseRemainder means reading payload and CRC.
	PhaseRemainder
)

func (p Phase) String() string {
	switch p {
	case PhaseSeek:
		return "seek"
	case PhaseHeader:
		return "header"
	case PhaseRemainder:
		return "remainder"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

type parseState int

const (
	stateSync1  parseState = iota // waiting for first sync byte
	stateSync2                    // waiting for second sync byte
	stateHeader                   // waiting for command, length [, status]
	stateBody                     // waiting for payload and crc
)

// ParseResult indicates the result after one parsing step.
// At most one of Frame and Err is set.
type ParseResult struct {
	Frame *Frame
	Err   error
}

// Parser parses a byte stream into frames.
// WithStatus selects the response layout (frames from the peripheral).
type Parser struct {
	WithStatus bool

	state  parseState
	buf    []byte
	expect int
}

// Phase gets the current phase.
func (p *Parser) Phase() Phase {
	switch p.state {
	case stateHeader:
		return PhaseHeader
	case stateBody:
		return PhaseRemainder
	}
	return PhaseSeek
}

// Need returns the number of bytes to complete the current phase.
// It is 1 while seeking the sync marker.
func (p *Parser) Need() int {
	switch p.state {
	case stateHeader:
		return p.headerLen() - len(p.buf)
	case stateBody:
		return p.expect - len(p.buf)
	}
	return 1
}

// Reset drops any partial frame and starts seeking sync again.
func (p *Parser) Reset() {
	p.state, p.buf, p.expect = stateSync1, p.buf[:0], 0
}

// Timeout notifies the parser the current phase runs out of time.
// It returns ErrSyncTimeout if no sync marker was seen, ErrShortRead
// otherwise, and resets the parser.
func (p *Parser) Timeout() error {
	var err error
	switch p.state {
	case stateHeader:
		err = fmt.Errorf("%w: header %d/%d bytes", ErrShortRead, len(p.buf), p.headerLen())
	case stateBody:
		err = fmt.Errorf("%w: frame %d/%d bytes", ErrShortRead, len(p.buf), p.expect)
	default:
		err = ErrSyncTimeout
	}
	p.Reset()
	return err
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	switch p.state {
	case stateSync1:
		if b == SyncByte {
			p.state = stateSync2
		}
	case stateSync2:
		if b != SyncByte {
			p.state = stateSync1
			return
		}
		p.buf = append(p.buf[:0], SyncByte, SyncByte)
		p.state = stateHeader
	case stateHeader:
		if len(p.buf) == syncSize && b == SyncByte {
			// a run of sync bytes, the marker is the last two.
			return
		}
		p.buf = append(p.buf, b)
		if len(p.buf) < p.headerLen() {
			return
		}
		p.expect = int(p.buf[offsetLength])
		if p.expect < p.headerLen()+crcSize {
			pr.Err = fmt.Errorf("%w: %d", ErrBadLength, p.expect)
			p.Reset()
			return
		}
		p.state = stateBody
	case stateBody:
		p.buf = append(p.buf, b)
		if len(p.buf) >= p.expect {
			return p.frameReady()
		}
	}
	return
}

func (p *Parser) headerLen() int {
	if p.WithStatus {
		return responseHeader
	}
	return requestHeader
}

func (p *Parser) frameReady() (pr ParseResult) {
	raw := make([]byte, len(p.buf))
	copy(raw, p.buf)
	p.Reset()
	pr.Frame, pr.Err = ParseFrame(raw, p.WithStatus)
	return
}
