package report

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/imu/exchange"
)

// JSON writes one JSON Record per line.
type JSON struct {
	Source string

	lock sync.Mutex
	enc  *json.Encoder
}

// NewJSON creates a JSON sink on w.
func NewJSON(w io.Writer, source string) *JSON {
	return &JSON{Source: source, enc: json.NewEncoder(w)}
}

// Report implements exchange.Sink.
func (j *JSON) Report(ctx context.Context, o exchange.Outcome) {
	j.lock.Lock()
	defer j.lock.Unlock()
	if err := j.enc.Encode(NewRecord(j.Source, o)); err != nil {
		glog.Errorf("json report: %v", err)
	}
}
