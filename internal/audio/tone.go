// Package audio synthesizes and plays the short confirmation tone that follows
// a successful search.
package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// Tone describes a sine tone with a linear attack and an exponential decay.
type Tone struct {
	Frequency  float64       // Hz
	Attack     time.Duration // linear ramp from 0 to Peak
	Duration   time.Duration // total length; decay ends here at Floor
	Peak       float64       // 0..1
	Floor      float64       // gain reached at Duration; must be > 0
	SampleRate int
}

// DefaultTone is the success cue: 600 Hz, 10 ms attack, decay to 0.001 by
// 500 ms.
func DefaultTone() Tone {
	return Tone{
		Frequency:  600,
		Attack:     10 * time.Millisecond,
		Duration:   500 * time.Millisecond,
		Peak:       0.3,
		Floor:      0.001,
		SampleRate: 44100,
	}
}

// Gain returns the envelope value at t.
func (t Tone) Gain(at time.Duration) float64 {
	switch {
	case at <= 0:
		return 0
	case at < t.Attack:
		return t.Peak * float64(at) / float64(t.Attack)
	case at >= t.Duration:
		return t.Floor
	}
	// exponential ramp: v = peak * (floor/peak)^progress
	progress := float64(at-t.Attack) / float64(t.Duration-t.Attack)
	return t.Peak * math.Pow(t.Floor/t.Peak, progress)
}

// Samples renders the tone as float samples in [-1, 1].
func (t Tone) Samples() []float64 {
	n := int(t.Duration.Seconds() * float64(t.SampleRate))
	out := make([]float64, n)
	step := time.Second / time.Duration(t.SampleRate)
	for i := range out {
		at := time.Duration(i) * step
		phase := 2 * math.Pi * t.Frequency * float64(i) / float64(t.SampleRate)
		out[i] = t.Gain(at) * math.Sin(phase)
	}
	return out
}

// WAV renders the tone as a 16-bit mono PCM WAV file.
func (t Tone) WAV() []byte {
	return EncodeWAV(t.Samples(), t.SampleRate)
}

// EncodeWAV encodes samples in [-1, 1] as a 16-bit mono PCM WAV file.
// Values outside the range are clipped.
func EncodeWAV(samples []float64, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	dataLen := len(samples) * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)

	le := binary.LittleEndian
	buf.WriteString("RIFF")
	binary.Write(&buf, le, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, le, uint32(16)) // PCM chunk size
	binary.Write(&buf, le, uint16(1))  // PCM format
	binary.Write(&buf, le, uint16(channels))
	binary.Write(&buf, le, uint32(sampleRate))
	binary.Write(&buf, le, uint32(sampleRate*blockAlign))
	binary.Write(&buf, le, uint16(blockAlign))
	binary.Write(&buf, le, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, le, uint32(dataLen))
	for _, s := range samples {
		s = math.Max(-1, math.Min(1, s))
		binary.Write(&buf, le, int16(math.Round(s*math.MaxInt16)))
	}
	return buf.Bytes()
}
