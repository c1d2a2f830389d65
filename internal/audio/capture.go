// Package audio captures microphone audio with malgo and hands it to the
// pipeline as raw 16-bit PCM chunks through a thread-safe queue.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// SampleRate is the fixed capture rate. The whisper backend expects 16 kHz
// mono, so capture is pinned to the same contract.
const SampleRate = 16000

// ambientEnergyRatio scales the measured ambient RMS into a speech threshold.
const ambientEnergyRatio = 1.5

// Capture records from a microphone in the background and invokes a callback
// with one raw PCM chunk per record window. Windows whose RMS energy stays
// below the threshold are treated as silence and dropped.
type Capture struct {
	ctx        *malgo.AllocatedContext
	sampleRate uint32
	deviceID   *malgo.DeviceID // nil selects the default device

	mu          sync.Mutex
	device      *malgo.Device
	window      []byte
	windowBytes int
	threshold   int
	onChunk     func([]byte)
}

// NewCapture creates a Capture for the device at deviceIndex, or the default
// device when deviceIndex is negative. Call Close when done.
func NewCapture(deviceIndex int, sampleRate uint32) (*Capture, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: initializing context: %w", err)
	}

	c := &Capture{
		ctx:        ctx,
		sampleRate: sampleRate,
	}

	if deviceIndex >= 0 {
		infos, err := ctx.Devices(malgo.Capture)
		if err != nil {
			ctx.Uninit()
			ctx.Free()
			return nil, fmt.Errorf("audio: enumerating devices: %w", err)
		}
		if deviceIndex >= len(infos) {
			ctx.Uninit()
			ctx.Free()
			return nil, fmt.Errorf("audio: device index %d out of range (have %d devices)", deviceIndex, len(infos))
		}
		id := infos[deviceIndex].ID
		c.deviceID = &id
	}

	return c, nil
}

// SetThreshold sets the RMS energy gate used to separate speech from silence.
func (c *Capture) SetThreshold(v int) {
	c.mu.Lock()
	c.threshold = v
	c.mu.Unlock()
}

// Threshold returns the current energy gate value.
func (c *Capture) Threshold() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threshold
}

// Calibrate samples ambient audio for the given duration and derives the
// energy threshold from the measured RMS. A silent measurement (zero RMS)
// leaves the configured threshold in place.
func (c *Capture) Calibrate(d time.Duration) error {
	var mu sync.Mutex
	var sumSquares float64
	var count int

	device, err := c.initDevice(func(pcm []byte) {
		mu.Lock()
		for i := 0; i+1 < len(pcm); i += 2 {
			s := float64(int16(binary.LittleEndian.Uint16(pcm[i : i+2])))
			sumSquares += s * s
			count++
		}
		mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("audio: calibrating: %w", err)
	}

	time.Sleep(d)
	device.Uninit()

	mu.Lock()
	defer mu.Unlock()
	if count == 0 {
		return nil
	}
	rms := math.Sqrt(sumSquares / float64(count))
	if t := int(rms * ambientEnergyRatio); t > 0 {
		c.mu.Lock()
		c.threshold = t
		c.mu.Unlock()
	}
	return nil
}

// Start begins background capture. onChunk receives one chunk of little-endian
// 16-bit mono PCM per elapsed window duration; it is invoked on the audio
// callback goroutine and must not block. Ownership of the chunk transfers to
// the callback.
func (c *Capture) Start(window time.Duration, onChunk func([]byte)) error {
	c.mu.Lock()
	if c.device != nil {
		c.mu.Unlock()
		return fmt.Errorf("audio: already capturing")
	}
	c.windowBytes = int(window.Seconds()*float64(c.sampleRate)) * 2
	if c.windowBytes <= 0 {
		c.mu.Unlock()
		return fmt.Errorf("audio: window duration %s too short", window)
	}
	c.window = c.window[:0]
	c.onChunk = onChunk
	c.mu.Unlock()

	device, err := c.initDevice(c.onData)
	if err != nil {
		return fmt.Errorf("audio: starting capture: %w", err)
	}

	c.mu.Lock()
	c.device = device
	c.mu.Unlock()

	return nil
}

// initDevice creates and starts a capture device delivering raw s16le bytes
// to onData.
func (c *Capture) initDevice(onData func([]byte)) (*malgo.Device, error) {
	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatS16
	deviceCfg.Capture.Channels = 1
	deviceCfg.SampleRate = c.sampleRate
	if c.deviceID != nil {
		deviceCfg.Capture.DeviceID = c.deviceID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pSample []byte, _ uint32) {
			onData(pSample)
		},
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceCfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("starting capture device: %w", err)
	}

	return device, nil
}

// onData accumulates callback bytes and flushes complete windows through the
// energy gate.
func (c *Capture) onData(pcm []byte) {
	c.mu.Lock()
	c.window = append(c.window, pcm...)
	for len(c.window) >= c.windowBytes {
		chunk := make([]byte, c.windowBytes)
		copy(chunk, c.window[:c.windowBytes])
		c.window = append(c.window[:0], c.window[c.windowBytes:]...)
		if rmsEnergy(chunk) >= c.threshold {
			c.onChunk(chunk)
		}
	}
	c.mu.Unlock()
}

// Close stops capture and releases all audio resources.
func (c *Capture) Close() error {
	c.mu.Lock()
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	c.mu.Unlock()

	if c.ctx != nil {
		if err := c.ctx.Uninit(); err != nil {
			return fmt.Errorf("audio: uninitializing context: %w", err)
		}
		c.ctx.Free()
	}

	return nil
}

// rmsEnergy computes the root-mean-square amplitude of little-endian 16-bit
// PCM, on the same scale as the int16 samples themselves.
func rmsEnergy(pcm []byte) int {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sumSquares float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2])))
		sumSquares += s * s
	}
	return int(math.Sqrt(sumSquares / float64(n)))
}
