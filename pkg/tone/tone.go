// Package tone synthesizes the alarm sound and the keepalive loop in memory
// as uncompressed RIFF/WAVE buffers, so the alarm can always make noise even
// when remote playback is unavailable.
package tone

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	// AlarmSampleRate is the sample rate of the synthesized alarm tone.
	AlarmSampleRate = 44100
	// AlarmSeconds is the length of one play-through of the alarm tone.
	AlarmSeconds = 90

	// KeepaliveSampleRate is the sample rate of the silent keepalive loop.
	KeepaliveSampleRate = 22050
	// KeepaliveSeconds is the length of the keepalive loop.
	KeepaliveSeconds = 3

	// HeaderSize is the size of the canonical 44-byte WAV header.
	HeaderSize = 44

	// fadeInSeconds is how long the eased global fade from silence to full
	// volume takes at the start of each play-through.
	fadeInSeconds = 12.0

	// rampSeconds is the attack/release ramp applied to each beep so sample
	// discontinuities never click.
	rampSeconds = 0.008
)

// beepSegment is one pure-tone burst within the repeating pattern.
type beepSegment struct {
	start float64 // offset into the pattern, seconds
	dur   float64 // seconds
	freq  float64 // Hz
}

// The pattern alternates a lower and a higher beep with short gaps, repeating
// every patternPeriod seconds for the whole buffer.
const patternPeriod = 1.5

var pattern = []beepSegment{
	{start: 0.0, dur: 0.35, freq: 880.00},   // A5
	{start: 0.5, dur: 0.35, freq: 1174.66},  // D6
}

var (
	alarmOnce sync.Once
	alarmBuf  []byte

	keepaliveOnce sync.Once
	keepaliveBuf  []byte
)

// Alarm returns the cached alarm tone as a complete WAV buffer. The buffer is
// synthesized on first use and shared by reference afterwards.
func Alarm() []byte {
	alarmOnce.Do(func() {
		alarmBuf = synthesizeAlarm()
	})
	return alarmBuf
}

// AlarmPCM returns the raw 16-bit little-endian mono samples of the alarm
// tone, without the container header.
func AlarmPCM() []byte {
	return Alarm()[HeaderSize:]
}

// Keepalive returns the cached keepalive buffer: a few seconds of silence
// with a valid WAV header, looped indefinitely by the caller to hold the
// platform audio session open.
func Keepalive() []byte {
	keepaliveOnce.Do(func() {
		pcm := make([]byte, KeepaliveSampleRate*KeepaliveSeconds*2)
		keepaliveBuf = wrapWAV(pcm, KeepaliveSampleRate)
	})
	return keepaliveBuf
}

// KeepalivePCM returns the keepalive samples without the container header.
func KeepalivePCM() []byte {
	return Keepalive()[HeaderSize:]
}

func synthesizeAlarm() []byte {
	numSamples := AlarmSampleRate * AlarmSeconds
	pcm := make([]byte, numSamples*2)

	for i := 0; i < numSamples; i++ {
		t := float64(i) / AlarmSampleRate
		v := patternSample(t) * fadeGain(t)

		s := int(v * 32767)
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(s)))
	}

	return wrapWAV(pcm, AlarmSampleRate)
}

// patternSample evaluates the repeating beep pattern at elapsed time t.
// Each beep is a fundamental plus a quieter octave, shaped by a short
// attack/release ramp.
func patternSample(t float64) float64 {
	pos := math.Mod(t, patternPeriod)

	for _, seg := range pattern {
		if pos < seg.start || pos >= seg.start+seg.dur {
			continue
		}
		local := pos - seg.start
		env := rampEnvelope(local, seg.dur)
		wave := 0.75*math.Sin(2*math.Pi*seg.freq*t) + 0.25*math.Sin(4*math.Pi*seg.freq*t)
		return 0.8 * env * wave
	}
	return 0
}

// rampEnvelope is a linear attack/release ramp over a segment of the given
// duration.
func rampEnvelope(ts, dur float64) float64 {
	g := 1.0
	if a := ts / rampSeconds; a < g {
		g = a
	}
	if r := (dur - ts) / rampSeconds; r < g {
		g = r
	}
	if g < 0 {
		return 0
	}
	return g
}

// fadeGain eases the overall loudness from silence to full over the first
// fadeInSeconds of a play-through.
func fadeGain(t float64) float64 {
	if t >= fadeInSeconds {
		return 1
	}
	g := t / fadeInSeconds
	return g * g
}

// wrapWAV prepends a 44-byte RIFF/WAVE header for mono 16-bit linear PCM at
// the given sample rate.
func wrapWAV(pcm []byte, sampleRate int) []byte {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	blockAlign := numChannels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign
	dataSize := len(pcm)

	buf := make([]byte, HeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // linear PCM
	binary.LittleEndian.PutUint16(buf[22:24], numChannels)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	copy(buf[HeaderSize:], pcm)
	return buf
}
