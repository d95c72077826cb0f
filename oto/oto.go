package oto

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/pdgraph"
)

type (
	// OtoContext plays interleaved stereo float32 audio on the default
	// output device of the system.
	OtoContext struct {
		context *oto.Context
	}

	// OtoOutput is one stream of audio to the device. Writes block until the
	// player has consumed the previous data, so a render loop writing to it
	// runs at the pace of the device.
	OtoOutput struct {
		player    *oto.Player
		writer    *io.PipeWriter
		tmpBuffer []byte
	}
)

const otoBufferSize = 100 * time.Millisecond

var _ pdgraph.AudioContext = (*OtoContext)(nil)

// NewContext creates an oto context with the given sample rate and waits
// until the device is ready.
func NewContext(sampleRate int) (*OtoContext, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoBufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

func (c *OtoContext) Output() pdgraph.AudioSink {
	r, w := io.Pipe()
	player := c.context.NewPlayer(r)
	player.Play()
	return &OtoOutput{player: player, writer: w}
}

// Close suspends the device; oto contexts cannot be disposed.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o *OtoOutput) WriteAudio(floatBuffer []float32) error {
	// reuse the capacity of tmpBuffer between calls
	o.tmpBuffer = FloatBufferToLE(floatBuffer, o.tmpBuffer[:0])
	if _, err := o.writer.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	if err := o.player.Err(); err != nil {
		return fmt.Errorf("player failed: %w", err)
	}
	return nil
}

// Close ends the stream, waits until the queued audio has been played and
// disposes of the player.
func (o *OtoOutput) Close() error {
	o.writer.Close()
	for o.player.IsPlaying() {
		time.Sleep(time.Millisecond)
	}
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// FloatBufferToLE appends the samples of buff to dst as 32-bit little-endian
// floats.
func FloatBufferToLE(buff []float32, dst []byte) []byte {
	for _, v := range buff {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
