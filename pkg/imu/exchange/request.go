package exchange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/imu.go/pkg/imu/comm"
)

// Request is what the caller asks for in each iteration.
type Request struct {
	Command comm.Command
	Params  []float32
}

// String implements fmt.Stringer.
func (r Request) String() string {
	if len(r.Params) == 0 {
		return r.Command.String()
	}
	return fmt.Sprintf("%s %v", r.Command, r.Params)
}

// ParseRequest parses a command name or code followed by float
// parameters.
func ParseRequest(args ...string) (Request, error) {
	if len(args) == 0 {
		return Request{}, fmt.Errorf("command expected")
	}
	cmd, err := comm.ParseCommand(args[0])
	if err != nil {
		return Request{}, err
	}
	params, err := ParseParams(args[1:]...)
	if err != nil {
		return Request{}, err
	}
	return Request{Command: cmd, Params: params}, nil
}

// ParseParams parses float parameters separated by spaces or commas.
func ParseParams(args ...string) ([]float32, error) {
	var params []float32
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid parameter %q", field)
			}
			params = append(params, float32(v))
		}
	}
	return params, nil
}
