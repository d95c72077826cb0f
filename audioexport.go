package pdgraph

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// AudioBuffer is an interleaved stereo buffer of float32 samples, e.g. the
// concatenation of several rendered blocks.
type AudioBuffer []float32

// Frames returns the number of stereo frames in the buffer.
func (b AudioBuffer) Frames() int { return len(b) / 2 }

// Raw converts the buffer into headerless little endian data: float32 by
// default, 16-bit signed integers if pcm16 is set.
func (b AudioBuffer) Raw(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error
	if pcm16 {
		err = binary.Write(buf, binary.LittleEndian, b.int16s())
	} else {
		err = binary.Write(buf, binary.LittleEndian, []float32(b))
	}
	if err != nil {
		return nil, fmt.Errorf("could not binary write data to binary buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWav encodes the buffer as a 16-bit PCM stereo .wav file.
func (b AudioBuffer) WriteWav(w io.WriteSeeker, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)
	ints := b.int16s()
	data := make([]int, len(ints))
	for i, v := range ints {
		data[i] = int(v)
	}
	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("could not encode wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not finalize wav file: %w", err)
	}
	return nil
}

func (b AudioBuffer) int16s() []int16 {
	ret := make([]int16, len(b))
	for i, v := range b {
		ret[i] = int16(clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16))
	}
	return ret
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
