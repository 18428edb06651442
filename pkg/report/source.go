package report

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "imu.go"

// MachineSource identifies this host in reports without exposing the raw
// machine id.
func MachineSource() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "unknown"
	}
	if len(id) > 16 {
		id = id[:16]
	}
	return id
}
