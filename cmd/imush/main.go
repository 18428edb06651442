package main

import (
	"github.com/robotalks/imu.go/pkg/cli/sh"
	"github.com/robotalks/imu.go/pkg/imu/transport"
)

//go-build: CGO_ENABLED=0

func init() {
	transport.SetupFlags()
}

func main() {
	sh.Main()
}
