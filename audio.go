package pdgraph

// AudioSink receives the rendered audio, one block at a time. The buffers are
// interleaved stereo (left, right, left, right...) float32 samples. The sink
// must not retain the buffer after WriteAudio returns.
type AudioSink interface {
	WriteAudio(buffer []float32) error
	Close() error
}

// AudioContext is the audio output device that can open sinks.
type AudioContext interface {
	Output() AudioSink
	Close() error
}
