package comm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Command is the command code on the wire.
type Command byte

// Command codes. The values are shared with the firmware.
const (
	CmdReadAll         Command = 0xA0
	CmdReadAccel       Command = 0xA1
	CmdReadGyro        Command = 0xA2
	CmdReadTemp        Command = 0xA3
	CmdReadBias        Command = 0xA4
	CmdReadStoredBias  Command = 0xA5
	CmdReadAdaptedBias Command = 0xA6
	CmdSetBias         Command = 0xB0
	CmdReplaceBias     Command = 0xB1
	CmdAdaptBias       Command = 0xB2
	CmdRestart         Command = 0xC0
	CmdFirmwareVersion Command = 0xD0
)

// Family groups commands by purpose.
type Family int

// Command families.
const (
	FamilySensor Family = iota
	FamilyConfig
	FamilyControl
	FamilyDiagnostic
)

var familyNames = [...]string{"sensor", "config", "control", "diagnostic"}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return "family(" + strconv.Itoa(int(f)) + ")"
}

// Shape is how the response payload is interpreted.
type Shape int

// Response shapes.
const (
	// ShapeNone means the payload (if any) carries no meaning, e.g. ack.
	ShapeNone Shape = iota
	// ShapeFloats means the payload is a float32 array.
	ShapeFloats
	// ShapeByte means a single raw byte right after the status byte.
	ShapeByte
)

// CommandInfo describes a registered command.
type CommandInfo struct {
	Code   Command
	Name   string
	Label  string
	Family Family
	// AcceptsPayload allows float parameters in the request.
	AcceptsPayload bool
	// RequiresPayload rejects requests without parameters.
	RequiresPayload bool
	Response        Shape
}

var registry = map[Command]*CommandInfo{}

func register(infos ...CommandInfo) {
	for i := range infos {
		info := infos[i]
		registry[info.Code] = &info
	}
}

func init() {
	register(
		CommandInfo{Code: CmdReadAll, Name: "read-all", Label: "Read acceleration, angular rate and temperature", Family: FamilySensor, Response: ShapeFloats},
		CommandInfo{Code: CmdReadAccel, Name: "read-accel", Label: "Read acceleration", Family: FamilySensor, Response: ShapeFloats},
		CommandInfo{Code: CmdReadGyro, Name: "read-gyro", Label: "Read angular rate", Family: FamilySensor, Response: ShapeFloats},
		CommandInfo{Code: CmdReadTemp, Name: "read-temp", Label: "Read temperature", Family: FamilySensor, Response: ShapeFloats},
		CommandInfo{Code: CmdReadBias, Name: "read-bias", Label: "Read bias in use", Family: FamilySensor, Response: ShapeFloats},
		CommandInfo{Code: CmdReadStoredBias, Name: "read-stored-bias", Label: "Read bias stored in flash", Family: FamilySensor, Response: ShapeFloats},
		CommandInfo{Code: CmdReadAdaptedBias, Name: "read-adapted-bias", Label: "Read adapted bias", Family: FamilySensor, Response: ShapeFloats},
		CommandInfo{Code: CmdSetBias, Name: "set-bias", Label: "Set bias", Family: FamilyConfig, AcceptsPayload: true, RequiresPayload: true},
		CommandInfo{Code: CmdReplaceBias, Name: "replace-bias", Label: "Replace specified bias", Family: FamilyConfig, AcceptsPayload: true, RequiresPayload: true},
		CommandInfo{Code: CmdAdaptBias, Name: "adapt-bias", Label: "Mark bias adapted", Family: FamilyConfig},
		CommandInfo{Code: CmdRestart, Name: "restart", Label: "Restart", Family: FamilyControl},
		CommandInfo{Code: CmdFirmwareVersion, Name: "firmware-version", Label: "Query firmware version", Family: FamilyDiagnostic, Response: ShapeByte},
	)
}

// Info looks up the registered definition.
func (c Command) Info() (*CommandInfo, bool) {
	info, ok := registry[c]
	return info, ok
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if info, ok := registry[c]; ok {
		return info.Name
	}
	return fmt.Sprintf("cmd(%02X)", byte(c))
}

// Commands lists all registered commands ordered by code.
func Commands() []CommandInfo {
	infos := make([]CommandInfo, 0, len(registry))
	for _, info := range registry {
		infos = append(infos, *info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Code < infos[j].Code })
	return infos
}

// ParseCommand accepts a command name (e.g. read-all) or a code in hex
// (e.g. 0xA0 or A0).
func ParseCommand(s string) (Command, error) {
	s = strings.TrimSpace(s)
	for code, info := range registry {
		if strings.EqualFold(info.Name, s) {
			return code, nil
		}
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if v, err := strconv.ParseUint(hex, 16, 8); err == nil {
		if _, ok := registry[Command(v)]; ok {
			return Command(v), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// CheckPayload validates the number of request parameters.
func (i *CommandInfo) CheckPayload(count int) error {
	if count > 0 && !i.AcceptsPayload {
		return fmt.Errorf("%w: %s takes no parameters", ErrPayloadMismatch, i.Name)
	}
	if count == 0 && i.RequiresPayload {
		return fmt.Errorf("%w: %s requires parameters", ErrPayloadMismatch, i.Name)
	}
	return nil
}
