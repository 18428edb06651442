// Package transport opens the byte stream to the IMU.
package transport

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/imu/sim"
)

// SimPort selects the simulated peripheral instead of a device.
const SimPort = "sim://"

// Config provides options to open the transport.
type Config struct {
	// Port is the serial device, e.g. /dev/ttyACM0, COM3 or sim://.
	Port string
	Baud int
	// Window bounds waiting for the sync marker of a response.
	Window time.Duration
	// ReadTimeout bounds reading header and remainder once synced.
	ReadTimeout time.Duration
}

var defaultConfig = Config{
	Port:        "/dev/ttyACM0",
	Baud:        115200,
	Window:      comm.DefaultWindow,
	ReadTimeout: comm.DefaultReadTimeout,
}

func init() {
	if val := os.Getenv("IMU_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("IMU_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port of the IMU, "+SimPort+" for the simulator.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Baud rate.")
	flag.DurationVar(&defaultConfig.Window, "window", defaultConfig.Window, "Response window.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Timeout reading the rest of a frame.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// IsSim tells whether the simulator is selected.
func (c *Config) IsSim() bool {
	return strings.HasPrefix(c.Port, SimPort)
}

// Open opens the port.
func (c *Config) Open() (exchange.Port, error) {
	if c.IsSim() {
		glog.Info("using simulated IMU")
		return sim.NewPeripheral(), nil
	}
	if c.Baud <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	mode := &serial.Mode{
		BaudRate: c.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(c.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Port, err)
	}
	glog.Infof("opened %s at %d baud", c.Port, c.Baud)
	return port, nil
}

// MustOpen opens the port and fails on error.
func (c *Config) MustOpen() exchange.Port {
	port, err := c.Open()
	if err != nil {
		log.Fatalln(err)
	}
	return port
}

// NewSession creates a Session which opens the port when it runs.
func (c *Config) NewSession(sink exchange.Sink) *exchange.Session {
	s := exchange.NewSession(c.Open, sink)
	s.Window, s.ReadTimeout = c.Window, c.ReadTimeout
	return s
}
