// Package pb defines the wire messages published for exchange reports.
package pb

import (
	"github.com/golang/protobuf/proto"
)

// Stats is the frame counters of a session.
type Stats struct {
	Transmitted uint64 `protobuf:"varint,1,opt,name=transmitted,proto3" json:"transmitted,omitempty"`
	Received    uint64 `protobuf:"varint,2,opt,name=received,proto3" json:"received,omitempty"`
	Valid       uint64 `protobuf:"varint,3,opt,name=valid,proto3" json:"valid,omitempty"`
}

func (m *Stats) Reset()         { *m = Stats{} }
func (m *Stats) String() string { return proto.CompactTextString(m) }
func (*Stats) ProtoMessage()    {}

// Report is a single exchange outcome.
type Report struct {
	Source    string    `protobuf:"bytes,1,opt,name=source,proto3" json:"source,omitempty"`
	Session   string    `protobuf:"bytes,2,opt,name=session,proto3" json:"session,omitempty"`
	Iteration uint64    `protobuf:"varint,3,opt,name=iteration,proto3" json:"iteration,omitempty"`
	Command   uint32    `protobuf:"varint,4,opt,name=command,proto3" json:"command,omitempty"`
	Params    []float32 `protobuf:"fixed32,5,rep,packed,name=params,proto3" json:"params,omitempty"`
	// Outcome is 0 for success, 1 for CRC failure, 2 for no response.
	Outcome      int32     `protobuf:"varint,6,opt,name=outcome,proto3" json:"outcome,omitempty"`
	Status       uint32    `protobuf:"varint,7,opt,name=status,proto3" json:"status,omitempty"`
	Values       []float32 `protobuf:"fixed32,8,rep,packed,name=values,proto3" json:"values,omitempty"`
	Version      uint32    `protobuf:"varint,9,opt,name=version,proto3" json:"version,omitempty"`
	Error        string    `protobuf:"bytes,10,opt,name=error,proto3" json:"error,omitempty"`
	Stats        *Stats    `protobuf:"bytes,11,opt,name=stats,proto3" json:"stats,omitempty"`
	TimeUnixNano int64     `protobuf:"varint,12,opt,name=time_unix_nano,json=timeUnixNano,proto3" json:"time_unix_nano,omitempty"`
	LatencyUs    int64     `protobuf:"varint,13,opt,name=latency_us,json=latencyUs,proto3" json:"latency_us,omitempty"`
}

func (m *Report) Reset()         { *m = Report{} }
func (m *Report) String() string { return proto.CompactTextString(m) }
func (*Report) ProtoMessage()    {}
