package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// AudioFrame is one chunk of raw PCM read from the capture process.
type AudioFrame struct {
	Data      []byte
	Timestamp time.Time
}

type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	BufferSize        int
	Device            string
	ChannelBufferSize int
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Channels:          1,
		Format:            "s16",
		BufferSize:        3200,
		Device:            "",
		ChannelBufferSize: 30,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", c.Channels)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", c.BufferSize)
	}
	if c.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid ChannelBufferSize: %d", c.ChannelBufferSize)
	}
	if c.Format == "" {
		return fmt.Errorf("invalid Format: empty")
	}
	if c.Format == "s16" || c.Format == "s16le" {
		if frameBytes := 2 * c.Channels; c.BufferSize%frameBytes != 0 {
			log.Printf("Recording: BufferSize %d not aligned to frame size %d; audio frames may split",
				c.BufferSize, frameBytes)
		}
	}
	return nil
}

// ChunkDuration is the audio length carried by one full buffer.
func (c Config) ChunkDuration() time.Duration {
	bytesPerSecond := c.SampleRate * c.Channels * 2
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(c.BufferSize) * time.Second / time.Duration(bytesPerSecond)
}

// Args returns the pw-record command line for this config.
func (c Config) Args() []string {
	args := []string{
		"--format", c.Format,
		"--rate", strconv.Itoa(c.SampleRate),
		"--channels", strconv.Itoa(c.Channels),
	}
	if c.Device != "" {
		args = append(args, "--target", c.Device)
	}
	return append(args, "-")
}

// Recorder captures microphone audio through a pw-record subprocess.
type Recorder struct {
	config    Config
	command   string
	recording atomic.Bool
	dropped   atomic.Int64

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc

	wg sync.WaitGroup
}

func NewRecorder(config Config) *Recorder {
	return &Recorder{config: config, command: "pw-record"}
}

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Dropped returns how many frames were discarded because the consumer fell
// behind.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Start launches the capture process. Frames are delivered on the returned
// channel until ctx is cancelled, Stop is called or the process exits.
func (r *Recorder) Start(ctx context.Context) (<-chan AudioFrame, <-chan error, error) {
	if r.recording.Load() {
		return nil, nil, fmt.Errorf("already recording")
	}
	if err := r.config.Validate(); err != nil {
		return nil, nil, err
	}
	if err := CheckPipeWireAvailable(ctx); err != nil {
		return nil, nil, fmt.Errorf("PipeWire not available: %w", err)
	}

	recordingCtx, cancel := context.WithCancel(ctx)
	frameCh := make(chan AudioFrame, r.config.ChannelBufferSize)
	errCh := make(chan error, 1)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.recording.Store(true)
	r.wg.Add(1)
	go r.captureLoop(recordingCtx, frameCh, errCh)

	return frameCh, errCh, nil
}

func (r *Recorder) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) captureLoop(ctx context.Context, frameCh chan<- AudioFrame, errCh chan<- error) {
	defer func() {
		close(frameCh)
		close(errCh)
		r.recording.Store(false)

		r.mu.Lock()
		if r.cmd != nil {
			_ = r.cmd.Wait()
			r.cmd = nil
		}
		r.cancel = nil
		r.mu.Unlock()

		r.wg.Done()
	}()

	cmd := exec.CommandContext(ctx, r.command, r.config.Args()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		emitErr(errCh, fmt.Errorf("create stdout pipe: %w", err))
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		emitErr(errCh, fmt.Errorf("create stderr pipe: %w", err))
		return
	}

	r.mu.Lock()
	r.cmd = cmd
	r.mu.Unlock()

	if err := cmd.Start(); err != nil {
		emitErr(errCh, fmt.Errorf("start %s: %w", r.command, err))
		return
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("Recording stderr: %s", scanner.Text())
		}
	}()

	if err := r.readFrames(ctx, stdout, frameCh); err != nil {
		emitErr(errCh, err)
	}
}

// readFrames slices r into BufferSize frames. When the consumer is behind the
// newest frame is dropped so capture never blocks.
func (r *Recorder) readFrames(ctx context.Context, src io.Reader, frameCh chan<- AudioFrame) error {
	buffer := make([]byte, r.config.BufferSize)
	var droppedSinceLog int64
	lastDropLog := time.Now()

	for {
		n, readErr := io.ReadFull(src, buffer)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buffer[:n])

			select {
			case frameCh <- AudioFrame{Data: data, Timestamp: time.Now()}:
			case <-ctx.Done():
				return nil
			default:
				r.dropped.Add(1)
				droppedSinceLog++
				if time.Since(lastDropLog) > time.Second {
					log.Printf("Recording: dropped %d frames due to backpressure", droppedSinceLog)
					lastDropLog = time.Now()
					droppedSinceLog = 0
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read audio: %w", readErr)
		}
	}
}

func emitErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
	log.Printf("Recording error: %v", err)
}

// ChunkSender accepts PCM chunks, typically a recognizer client.
type ChunkSender interface {
	SendChunk(pcm []byte) error
}

// Forward copies frames to dst until frames is closed or ctx is done. Send
// errors are logged and counted; the stream keeps going so a reconnecting
// recognizer can catch up.
func Forward(ctx context.Context, frames <-chan AudioFrame, dst ChunkSender) (sent, failed int) {
	for {
		select {
		case <-ctx.Done():
			return sent, failed
		case frame, ok := <-frames:
			if !ok {
				return sent, failed
			}
			if err := dst.SendChunk(frame.Data); err != nil {
				failed++
				if failed == 1 || failed%50 == 0 {
					log.Printf("Recording: forward failed (%d so far): %v", failed, err)
				}
				continue
			}
			sent++
		}
	}
}

func CheckPipeWireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := exec.CommandContext(checkCtx, "pw-cli", "info").Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}
