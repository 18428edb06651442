// Package sh provides an interactive shell exchanging commands with the
// IMU.
package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/imu/transport"
	"github.com/robotalks/imu.go/pkg/report"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	// Sink additionally receives every outcome.
	Sink exchange.Sink
	Out  io.Writer

	Shell  *ishell.Shell
	Config *transport.Config

	port exchange.Port
	ctl  *exchange.Controller
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *transport.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Out:         os.Stdout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range Cmds() {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Open opens the port, closing the current one.
func (s *Shell) Open() error {
	port, err := s.Config.Open()
	if err != nil {
		return err
	}
	s.Close()
	s.port = port
	s.ctl = exchange.NewController(port, exchange.ReportFunc(s.print)).
		SetTiming(s.Config.Window, s.Config.ReadTimeout)
	if s.Shell != nil {
		s.Shell.SetPrompt(s.Config.Port + " > ")
	}
	return nil
}

// Close closes the current port.
func (s *Shell) Close() {
	if s.port == nil {
		return
	}
	if err := s.port.Close(); err != nil {
		fmt.Fprintf(s.Out, "close: %v\n", err)
	}
	s.port, s.ctl = nil, nil
	if s.Shell != nil {
		s.Shell.SetPrompt(closedPrompt)
	}
}

// Stats gets the statistics since the port was opened.
func (s *Shell) Stats() (exchange.Stats, bool) {
	if s.ctl == nil {
		return exchange.Stats{}, false
	}
	return s.ctl.Stats(), true
}

// Do runs req for n iterations, or until interrupted when n <= 0.
func (s *Shell) Do(ctx context.Context, req exchange.Request, n int) (exchange.Summary, error) {
	if s.ctl == nil {
		return exchange.Summary{}, fmt.Errorf("port not open")
	}
	summary := s.ctl.Run(ctx, req, n)
	if summary.Termination == exchange.Failed && errors.Is(summary.Err, comm.ErrTransportClosed) {
		s.Close()
	}
	return summary, summary.Err
}

func (s *Shell) print(ctx context.Context, o exchange.Outcome) {
	if s.Sink != nil {
		s.Sink.Report(ctx, o)
	}
	if s.OutputJSON {
		out, err := json.Marshal(report.NewRecord("", o))
		if err != nil {
			fmt.Fprintln(s.Out, err)
			return
		}
		fmt.Fprintln(s.Out, string(out))
		return
	}
	fmt.Fprintln(s.Out, report.FormatOutcome(o, false))
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if err := s.Open(); err != nil {
		log.Fatalf("open %s failed: %v", s.Config.Port, err)
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// interruptible returns a context cancelled by Ctrl-C, for loops.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(transport.NewConfig()).Run(flag.Args()...)
}
