package comm

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scriptedSource replays chunks of bytes. An empty chunk, or running out
// of chunks, behaves like a read timeout and advances the fake clock by
// tick, or by the whole read timeout if tick is zero.
type scriptedSource struct {
	chunks  [][]byte
	err     error
	now     time.Time
	tick    time.Duration
	timeout time.Duration
}

func (s *scriptedSource) idle() {
	step := s.timeout
	if s.tick > 0 && s.tick < step {
		step = s.tick
	}
	s.now = s.now.Add(step)
}

func (s *scriptedSource) SetReadTimeout(d time.Duration) error {
	s.timeout = d
	return nil
}

func (s *scriptedSource) Read(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.idle()
		return 0, nil
	}
	chunk := s.chunks[0]
	if len(chunk) == 0 {
		s.chunks = s.chunks[1:]
		s.idle()
		return 0, nil
	}
	n := copy(p, chunk)
	if s.chunks[0] = chunk[n:]; len(s.chunks[0]) == 0 {
		s.chunks = s.chunks[1:]
	}
	return n, nil
}

func newScriptedReader(chunks ...[]byte) (*Reader, *scriptedSource) {
	src := &scriptedSource{chunks: chunks, now: time.Unix(0, 0)}
	r := NewReader(src)
	r.now = func() time.Time { return src.now }
	return r, src
}

func concat(parts ...[]byte) (b []byte) {
	for _, p := range parts {
		b = append(b, p...)
	}
	return
}

func TestReaderSyncRecovery(t *testing.T) {
	frame := mustEncodeResponse(t, CmdReadAll, 0, EncodeFloats([]float32{0, 0, 1, 0.1, 0.2, 0.3, 24}))
	r, _ := newScriptedReader(concat([]byte{0x00, 0x11}, frame))
	resp, synced, err := r.ReadResponse()
	require.NoError(t, err)
	require.True(t, synced)
	require.Equal(t, CmdReadAll, resp.Command)
	require.Equal(t, []float32{0, 0, 1, 0.1, 0.2, 0.3, 24}, resp.Values)
}

func TestReaderDuplicatedSyncByte(t *testing.T) {
	frame := mustEncodeResponse(t, CmdReadTemp, 0, EncodeFloats([]float32{21}))
	r, src := newScriptedReader(concat([]byte{SyncByte}, frame), frame)
	for n := 0; n < 2; n++ {
		resp, synced, err := r.ReadResponse()
		require.NoError(t, err)
		require.True(t, synced)
		require.Equal(t, CmdReadTemp, resp.Command)
		require.Equal(t, []float32{21}, resp.Values)
	}
	require.Equal(t, time.Unix(0, 0), src.now, "no time spent waiting")
}

func TestReaderChunkedArrival(t *testing.T) {
	frame := mustEncodeResponse(t, CmdReadGyro, 2, EncodeFloats([]float32{1, 2, 3}))
	r, src := newScriptedReader(frame[:1], nil, frame[1:4], nil, nil, frame[4:9], nil, frame[9:])
	src.tick = 100 * time.Microsecond
	resp, _, err := r.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, byte(2), resp.Status)
	require.Equal(t, []float32{1, 2, 3}, resp.Values)
}

func TestReaderReadsNoMoreThanTheFrame(t *testing.T) {
	first := mustEncodeResponse(t, CmdFirmwareVersion, 0, []byte{0x10})
	second := mustEncodeResponse(t, CmdFirmwareVersion, 0, []byte{0x11})
	r, _ := newScriptedReader(concat(first, second))
	for _, expect := range []byte{0x10, 0x11} {
		resp, _, err := r.ReadResponse()
		require.NoError(t, err)
		require.Equal(t, expect, resp.Version)
		require.Nil(t, resp.Values)
	}
}

func TestReaderSyncTimeout(t *testing.T) {
	r, src := newScriptedReader([]byte{1, 2, 3, SyncByte, 4})
	_, synced, err := r.ReadResponse()
	require.ErrorIs(t, err, ErrSyncTimeout)
	require.True(t, IsTimeout(err))
	require.False(t, synced)
	require.False(t, src.now.Before(time.Unix(0, 0).Add(DefaultWindow)))
}

func TestReaderShortRead(t *testing.T) {
	frame := mustEncodeResponse(t, CmdReadAll, 0, EncodeFloats(make([]float32, 7)))
	testCases := []struct {
		name string
		in   []byte
	}{
		{"header", frame[:4]},
		{"remainder", frame[:len(frame)-1]},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newScriptedReader(tc.in)
			resp, synced, err := r.ReadResponse()
			require.ErrorIs(t, err, ErrShortRead)
			require.True(t, IsTimeout(err))
			require.True(t, synced)
			require.Nil(t, resp)
		})
	}
}

func TestReaderPhaseBudget(t *testing.T) {
	frame := mustEncodeResponse(t, CmdReadTemp, 0, EncodeFloats([]float32{20}))
	r, src := newScriptedReader(frame[:5], nil, nil, frame[5:])
	src.tick = 10 * time.Millisecond
	r.Window = time.Millisecond
	r.ReadTimeout = time.Second
	resp, _, err := r.ReadResponse()
	require.NoError(t, err, "window only bounds seeking sync")
	require.Equal(t, []float32{20}, resp.Values)
}

func TestReaderWorstCaseDuration(t *testing.T) {
	frame := mustEncodeResponse(t, CmdReadTemp, 0, EncodeFloats([]float32{20}))
	stall := func(n int) (chunks [][]byte) {
		for ; n > 0; n-- {
			chunks = append(chunks, nil)
		}
		return
	}
	var chunks [][]byte
	chunks = append(chunks, stall(4)...)
	chunks = append(chunks, frame[:2])
	chunks = append(chunks, stall(9)...)
	chunks = append(chunks, frame[2:5])
	chunks = append(chunks, stall(9)...)
	chunks = append(chunks, frame[5:len(frame)-1])
	r, src := newScriptedReader(chunks...)
	src.tick = time.Millisecond
	r.Window = 5 * time.Millisecond
	r.ReadTimeout = 10 * time.Millisecond

	_, synced, err := r.ReadResponse()
	require.ErrorIs(t, err, ErrShortRead)
	require.True(t, synced)
	elapsed := src.now.Sub(time.Unix(0, 0))
	require.Greater(t, elapsed, r.Window+r.ReadTimeout)
	require.LessOrEqual(t, elapsed, r.Window+2*r.ReadTimeout)
}

func TestReaderCRCMismatch(t *testing.T) {
	frame := mustEncodeResponse(t, CmdReadTemp, 0, EncodeFloats([]float32{20}))
	frame[6] ^= 0x01
	r, _ := newScriptedReader(frame)
	_, synced, err := r.ReadResponse()
	require.ErrorIs(t, err, ErrCRCMismatch)
	require.True(t, IsCorrupt(err))
	require.True(t, synced)
}

func TestReaderMalformedPayload(t *testing.T) {
	r, _ := newScriptedReader(mustEncodeResponse(t, CmdReadAccel, 0, []byte{1, 2, 3, 4, 5}))
	_, synced, err := r.ReadResponse()
	require.ErrorIs(t, err, ErrMalformedPayload)
	require.True(t, IsCorrupt(err))
	require.True(t, synced)
}

func TestReaderTransportClosed(t *testing.T) {
	r, src := newScriptedReader([]byte{SyncByte})
	src.err = io.EOF
	_, synced, err := r.ReadResponse()
	require.ErrorIs(t, err, ErrTransportClosed)
	require.False(t, synced)
}

func TestRequestReader(t *testing.T) {
	src := &scriptedSource{chunks: [][]byte{mustEncode(t, CmdSetBias, 1.0, -2.5, 0.0)}}
	r := NewRequestReader(src)
	f, err := r.ReadFrame()
	require.NoError(t, err)
	require.False(t, f.HasStatus)
	values, err := DecodeFloats(f.Payload)
	require.NoError(t, err)
	require.Equal(t, []float32{1.0, -2.5, 0.0}, values)
}
