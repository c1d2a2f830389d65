package audio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gen2brain/malgo"
)

// Device identifies one capture device by enumeration index and name.
type Device struct {
	Index int
	Name  string
}

// ListDevices enumerates the available capture devices.
func ListDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: initializing context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("audio: enumerating devices: %w", err)
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{Index: i, Name: info.Name()}
	}
	return devices, nil
}

// MatchDevice resolves a device selector against the enumerated devices.
// A numeric selector matches by index; anything else matches the first device
// whose name contains the selector, case-insensitively.
func MatchDevice(devices []Device, selector string) (int, error) {
	if n, err := strconv.Atoi(selector); err == nil {
		if n < 0 || n >= len(devices) {
			return 0, fmt.Errorf("audio: device index %d out of range (have %d devices)", n, len(devices))
		}
		return n, nil
	}

	want := strings.ToLower(selector)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), want) {
			return d.Index, nil
		}
	}
	return 0, fmt.Errorf("audio: no input device matching %q", selector)
}
