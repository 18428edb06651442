// Package sim provides a simulated IMU peripheral speaking the link
// protocol over an in-memory byte stream.
package sim

import (
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/imu/comm"
)

// Status bytes answered by the peripheral.
const (
	StatusOK       byte = 0x00
	StatusBadParam byte = 0x01
)

// Fault is a transmission fault applied to one response.
type Fault int

// Faults.
const (
	FaultNone Fault = iota
	// FaultSilent drops the response.
	FaultSilent
	// FaultCorrupt flips one bit of the payload or CRC.
	FaultCorrupt
	// FaultTruncate sends only the first half of the response.
	FaultTruncate
	// FaultNoise prepends garbage before the response.
	FaultNoise
)

// Peripheral implements the transport contract used by the exchange
// controller: writes are parsed as requests, responses become readable.
type Peripheral struct {
	Version byte
	Accel   [3]float32
	Gyro    [3]float32
	Temp    float32

	bias        []float32
	storedBias  []float32
	adaptedBias []float32
	restarts    int
	faults      []Fault

	lock    sync.Mutex
	parser  comm.Parser
	rx      []byte
	notify  chan struct{}
	timeout time.Duration
	closed  bool
}

// NewPeripheral creates a peripheral resting flat at room temperature.
func NewPeripheral() *Peripheral {
	return &Peripheral{
		Version:     0x10,
		Accel:       [3]float32{0, 0, 1},
		Temp:        25,
		bias:        make([]float32, 6),
		storedBias:  make([]float32, 6),
		adaptedBias: make([]float32, 6),
		notify:      make(chan struct{}, 1),
		timeout:     -1,
	}
}

// Inject queues faults, one for each upcoming response.
func (p *Peripheral) Inject(faults ...Fault) {
	p.lock.Lock()
	p.faults = append(p.faults, faults...)
	p.lock.Unlock()
}

// Bias returns a copy of the bias in use.
func (p *Peripheral) Bias() []float32 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]float32(nil), p.bias...)
}

// Restarts counts restart commands handled.
func (p *Peripheral) Restarts() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.restarts
}

// SetReadTimeout implements the transport contract. Negative blocks.
func (p *Peripheral) SetReadTimeout(d time.Duration) error {
	p.lock.Lock()
	p.timeout = d
	p.lock.Unlock()
	return nil
}

// ResetInputBuffer discards pending response bytes.
func (p *Peripheral) ResetInputBuffer() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return os.ErrClosed
	}
	p.rx = nil
	return nil
}

// Read reads response bytes, returning 0 bytes on timeout.
func (p *Peripheral) Read(b []byte) (int, error) {
	var timer <-chan time.Time
	for {
		p.lock.Lock()
		if p.closed {
			p.lock.Unlock()
			return 0, os.ErrClosed
		}
		if len(p.rx) > 0 {
			n := copy(b, p.rx)
			p.rx = p.rx[n:]
			p.lock.Unlock()
			return n, nil
		}
		timeout := p.timeout
		p.lock.Unlock()

		if timer == nil && timeout >= 0 {
			if timeout == 0 {
				return 0, nil
			}
			timer = time.After(timeout)
		}
		select {
		case <-p.notify:
		case <-timer:
			return 0, nil
		}
	}
}

// Write consumes request bytes and queues responses.
func (p *Peripheral) Write(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return 0, os.ErrClosed
	}
	for _, c := range b {
		pr := p.parser.Parse(c)
		if pr.Err != nil {
			glog.V(3).Infof("sim: drop request: %v", pr.Err)
			continue
		}
		if pr.Frame != nil {
			p.respond(pr.Frame)
		}
	}
	return len(b), nil
}

// Close implements io.Closer.
func (p *Peripheral) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.closed {
		p.closed = true
		close(p.notify)
	}
	return nil
}

func (p *Peripheral) respond(req *comm.Frame) {
	status, payload, ok := p.handle(req)
	if !ok {
		return
	}
	resp, err := comm.EncodeResponse(req.Command, status, payload)
	if err != nil {
		glog.Errorf("sim: encode response: %v", err)
		return
	}
	fault := FaultNone
	if len(p.faults) > 0 {
		fault, p.faults = p.faults[0], p.faults[1:]
	}
	switch fault {
	case FaultSilent:
		return
	case FaultCorrupt:
		resp[len(resp)-3] ^= 0x01
	case FaultTruncate:
		resp = resp[:len(resp)/2]
	case FaultNoise:
		resp = append([]byte{0x00, 0x11, comm.SyncByte, 0x42}, resp...)
	}
	p.rx = append(p.rx, resp...)
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// handle executes a request. ok is false if nothing is answered.
func (p *Peripheral) handle(req *comm.Frame) (status byte, payload []byte, ok bool) {
	params, err := comm.DecodeFloats(req.Payload)
	if err != nil {
		return StatusBadParam, nil, true
	}
	switch req.Command {
	case comm.CmdReadAll:
		values := append(append(append([]float32(nil), p.Accel[:]...), p.Gyro[:]...), p.Temp)
		return StatusOK, comm.EncodeFloats(values), true
	case comm.CmdReadAccel:
		return StatusOK, comm.EncodeFloats(p.Accel[:]), true
	case comm.CmdReadGyro:
		return StatusOK, comm.EncodeFloats(p.Gyro[:]), true
	case comm.CmdReadTemp:
		return StatusOK, comm.EncodeFloats([]float32{p.Temp}), true
	case comm.CmdReadBias:
		return StatusOK, comm.EncodeFloats(p.bias), true
	case comm.CmdReadStoredBias:
		return StatusOK, comm.EncodeFloats(p.storedBias), true
	case comm.CmdReadAdaptedBias:
		return StatusOK, comm.EncodeFloats(p.adaptedBias), true
	case comm.CmdSetBias:
		if len(params) != len(p.bias) {
			return StatusBadParam, nil, true
		}
		copy(p.bias, params)
		return StatusOK, nil, true
	case comm.CmdReplaceBias:
		// pairs of (index, value)
		if len(params) == 0 || len(params)%2 != 0 {
			return StatusBadParam, nil, true
		}
		for n := 0; n < len(params); n += 2 {
			index := int(params[n])
			if index < 0 || index >= len(p.bias) || float32(index) != params[n] {
				return StatusBadParam, nil, true
			}
			p.bias[index] = params[n+1]
		}
		return StatusOK, nil, true
	case comm.CmdAdaptBias:
		copy(p.adaptedBias, p.bias)
		copy(p.storedBias, p.bias)
		return StatusOK, nil, true
	case comm.CmdRestart:
		p.restarts++
		copy(p.bias, p.storedBias)
		return StatusOK, nil, true
	case comm.CmdFirmwareVersion:
		return StatusOK, []byte{p.Version}, true
	}
	return 0, nil, false
}
