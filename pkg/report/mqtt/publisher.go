package mqtt

import (
	"context"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/report"
	"github.com/robotalks/imu.go/pkg/report/pb"
)

// ReportTopicSuffix is appended to the source to form the publish topic.
const ReportTopicSuffix = "/report"

// ReportTopic is the topic reports from source are published to.
func ReportTopic(source string) string {
	return source + ReportTopicSuffix
}

// Publisher is an exchange.Sink publishing reports as protobuf.
type Publisher struct {
	Queue  *Queue
	Source string
}

// NewPublisher creates a Publisher.
func NewPublisher(q *Queue, source string) *Publisher {
	return &Publisher{Queue: q, Source: source}
}

// Report implements exchange.Sink. Publishing never blocks the exchange
// loop.
func (p *Publisher) Report(ctx context.Context, o exchange.Outcome) {
	payload, err := proto.Marshal(report.ToProto(p.Source, o))
	if err != nil {
		glog.Errorf("encode report: %v", err)
		return
	}
	p.Queue.Pub(ReportTopic(p.Source), payload)
}

// SubReports subscribes reports from all sources.
func SubReports(q *Queue, fn func(source string, m *pb.Report)) paho.Token {
	return q.Sub("+"+ReportTopicSuffix, reportHandler(fn))
}

func reportHandler(fn func(source string, m *pb.Report)) Handler {
	return func(topic string, payload []byte) {
		var m pb.Report
		if err := proto.Unmarshal(payload, &m); err != nil {
			glog.Warningf("%s: bad report: %v", topic, err)
			return
		}
		fn(strings.TrimSuffix(topic, ReportTopicSuffix), &m)
	}
}
