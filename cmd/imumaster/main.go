package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/imu.go/pkg/framework"
	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/imu/transport"
	env "github.com/robotalks/imu.go/pkg/report/env"
)

var (
	command    = comm.CmdReadAll.String()
	params     string
	iterations = 1
	rate       float64
)

func init() {
	transport.SetupFlags()
	env.SetupFlags()
	flag.StringVar(&command, "cmd", command, "Command name or code in hex.")
	flag.StringVar(&params, "params", params, "Comma separated float parameters.")
	flag.IntVar(&iterations, "n", iterations, "Number of iterations, 0 runs until interrupted.")
	flag.Float64Var(&rate, "rate", rate, "Iterations per second, 0 for unpaced.")
}

func main() {
	flag.Parse()

	req, err := exchange.ParseRequest(command, params)
	if err != nil {
		log.Fatalln(err)
	}
	if _, err := comm.Encode(req.Command, req.Params); err != nil {
		log.Fatalln(err)
	}

	reporting := env.NewConfig().MustNewEnv()
	if err := reporting.Start(); err != nil {
		log.Fatalln(err)
	}

	session := transport.NewConfig().NewSession(reporting.Sink)
	session.Rate = rate

	var summary exchange.Summary
	runner := fx.NewRunner().HandleSignals()
	runner.Go(reporting.Runnables()...)
	runner.Go(fx.NamedRun("session", fx.RunFunc(func(ctx context.Context) error {
		summary = session.Run(ctx, req, iterations)
		if summary.Termination == exchange.Failed {
			return summary.Err
		}
		return nil
	})))
	err = runner.Wait()
	reporting.Close()
	glog.Flush()
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
