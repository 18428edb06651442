package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	fx "github.com/robotalks/imu.go/pkg/framework"
	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/imu/transport"
)

func init() {
	transport.SetupFlags()
}

// queryVersion runs a single firmware version exchange in s. resp is nil
// unless the exchange succeeded.
func queryVersion(ctx context.Context, s *exchange.Session) (resp *comm.Response, err error) {
	s.Sink = exchange.ReportFunc(func(ctx context.Context, o exchange.Outcome) {
		if o.Kind != exchange.Success {
			log.Printf("%s: %s (%v)", o.Request, o.Kind, o.Err)
			return
		}
		resp = o.Response
	})
	summary := s.Run(ctx, exchange.Request{Command: comm.CmdFirmwareVersion}, 1)
	if summary.Termination != exchange.Completed {
		return nil, summary.Err
	}
	return resp, nil
}

func main() {
	flag.Parse()

	session := transport.NewConfig().NewSession(nil)
	var resp *comm.Response
	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("version", fx.RunFunc(func(ctx context.Context) (err error) {
		resp, err = queryVersion(ctx, session)
		return
	})))
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
	if resp == nil {
		os.Exit(1)
	}
	fmt.Printf("ver.=%02X\n", resp.Version)
}
