package sh

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/report"
)

var (
	// OpenCmd (re)opens the port.
	OpenCmd = ishell.Cmd{
		Name: "open",
		Help: "reopen the port",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Open(); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the port.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "close the port",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// StatsCmd prints statistics.
	StatsCmd = ishell.Cmd{
		Name:    "stats",
		Aliases: []string{"s"},
		Help:    "print frame counters",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			stats, ok := s.Stats()
			if !ok {
				c.Err(fmt.Errorf("port not open"))
				return
			}
			if s.OutputJSON {
				out, _ := json.Marshal(stats)
				c.Println(string(out))
				return
			}
			c.Println(report.FormatStats(stats))
		},
	}

	// CommandsCmd lists known commands.
	CommandsCmd = ishell.Cmd{
		Name:    "commands",
		Aliases: []string{"ls"},
		Help:    "list IMU commands",
		Func: func(c *ishell.Context) {
			for _, info := range comm.Commands() {
				c.Printf("%02X %-18s %-10s %s\n", byte(info.Code), info.Name, info.Family, info.Label)
			}
		},
	}

	// LoopCmd repeats a command.
	LoopCmd = ishell.Cmd{
		Name:    "loop",
		Aliases: []string{"repeat"},
		Help:    "N COMMAND [PARAMS...], N=0 runs until Ctrl-C",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("usage: loop N COMMAND [PARAMS...]"))
				return
			}
			n, err := strconv.Atoi(c.Args[0])
			if err != nil || n < 0 {
				c.Err(fmt.Errorf("invalid count %q", c.Args[0]))
				return
			}
			req, err := exchange.ParseRequest(c.Args[1:]...)
			if err != nil {
				c.Err(err)
				return
			}
			ctx, cancel := interruptible()
			defer cancel()
			summary, err := ShellFrom(c).Do(ctx, req, n)
			if summary.Termination != exchange.Failed {
				err = nil
			}
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s after %d iterations: %s\n", summary.Termination, summary.Iterations, report.FormatStats(summary.Stats))
		},
	}
)

// Cmds returns the shell commands, one per registered IMU command plus
// the built-in ones.
func Cmds() []*ishell.Cmd {
	cmds := []*ishell.Cmd{&OpenCmd, &CloseCmd, &StatsCmd, &CommandsCmd, &LoopCmd}
	for _, info := range comm.Commands() {
		cmds = append(cmds, imuCmd(info))
	}
	return cmds
}

func imuCmd(info comm.CommandInfo) *ishell.Cmd {
	help := info.Label
	if info.AcceptsPayload {
		help += ", PARAMS..."
	}
	return &ishell.Cmd{
		Name:    info.Name,
		Aliases: []string{fmt.Sprintf("%02x", byte(info.Code))},
		Help:    help,
		Func: func(c *ishell.Context) {
			params, err := exchange.ParseParams(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			req := exchange.Request{Command: info.Code, Params: params}
			if _, err := ShellFrom(c).Do(context.Background(), req, 1); err != nil {
				c.Err(err)
			}
		},
	}
}
