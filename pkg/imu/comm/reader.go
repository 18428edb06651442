package comm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
)

// Default timing, following the reference master running at 115200 baud.
const (
	DefaultWindow      = 5 * time.Millisecond
	DefaultReadTimeout = 10 * time.Millisecond
)

// Source is a byte source with a configurable read timeout.
// A Read hitting the timeout returns 0 bytes with nil error or a
// timeout error (os.IsTimeout).
type Source interface {
	io.Reader
	SetReadTimeout(time.Duration) error
}

// Reader acquires frames from a Source.
//
// Two deadlines apply: Window bounds seeking the sync marker, and
// ReadTimeout bounds each of the header and remainder phases once sync is
// found. Running out of either never yields a partial frame.
// The deadlines are consecutive, not nested: a single ReadFrame may take
// up to Window + 2*ReadTimeout when the peripheral stalls in each phase.
type Reader struct {
	Source      Source
	Window      time.Duration
	ReadTimeout time.Duration

	parser Parser
	buf    []byte
	now    func() time.Time
}

// NewReader creates a Reader for frames sent by the peripheral.
func NewReader(src Source) *Reader {
	return newReader(src, true)
}

// NewRequestReader creates a Reader for frames sent by the master.
func NewRequestReader(src Source) *Reader {
	return newReader(src, false)
}

func newReader(src Source, withStatus bool) *Reader {
	return &Reader{
		Source:      src,
		Window:      DefaultWindow,
		ReadTimeout: DefaultReadTimeout,
		parser:      Parser{WithStatus: withStatus},
		buf:         make([]byte, MaxFrameLen),
		now:         time.Now,
	}
}

// ReadFrame acquires the next valid frame.
// Failures are ErrSyncTimeout, ErrShortRead, ErrBadLength, ErrCRCMismatch
// (all recoverable) or ErrTransportClosed.
func (r *Reader) ReadFrame() (*Frame, error) {
	r.parser.Reset()
	phase := PhaseSeek
	deadline := r.now().Add(r.Window)
	for {
		remaining := deadline.Sub(r.now())
		if remaining <= 0 {
			return nil, r.parser.Timeout()
		}
		if err := r.Source.SetReadTimeout(remaining); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransportClosed, err)
		}
		n, err := r.Source.Read(r.buf[:r.parser.Need()])
		if err != nil && !isReadTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTransportClosed, err)
		}
		for _, b := range r.buf[:n] {
			pr := r.parser.Parse(b)
			if pr.Err != nil {
				glog.V(2).Infof("RX drop: %v", pr.Err)
				return nil, pr.Err
			}
			if pr.Frame != nil {
				glog.V(2).Infof("RX % X", pr.Frame.Raw)
				return pr.Frame, nil
			}
		}
		if p := r.parser.Phase(); p != phase {
			phase = p
			deadline = r.now().Add(r.ReadTimeout)
		}
	}
}

// ReadResponse acquires a frame and decodes it by its command definition.
// The returned bool reports whether sync was matched, even on failure.
func (r *Reader) ReadResponse() (*Response, bool, error) {
	f, err := r.ReadFrame()
	if err != nil {
		return nil, !errors.Is(err, ErrSyncTimeout) && !errors.Is(err, ErrTransportClosed), err
	}
	resp, err := DecodeResponse(f)
	return resp, true, err
}

func isReadTimeout(err error) bool {
	return os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded)
}
