package elevenlabs

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

const targetRate = 8000

// decodeMP3To8k decodes an MP3 stream into 8 kHz mono PCM samples.
// go-mp3 always emits 16-bit little-endian stereo at the source sample rate.
func decodeMP3To8k(data []byte) ([]int16, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mp3 decoder: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3 read: %w", err)
	}
	mono := stereoToMono(raw)
	return resampleMono(mono, dec.SampleRate(), targetRate), nil
}

// stereoToMono converts interleaved 16-bit LE stereo bytes to mono samples
// by averaging the two channels.
func stereoToMono(raw []byte) []int16 {
	// One stereo frame is 4 bytes. A trailing partial frame is dropped.
	frames := len(raw) / 4
	mono := make([]int16, frames)
	for i := range frames {
		off := i * 4
		left := int16(raw[off]) | int16(raw[off+1])<<8
		right := int16(raw[off+2]) | int16(raw[off+3])<<8
		mono[i] = int16((int32(left) + int32(right)) / 2)
	}
	return mono
}

// resampleMono converts mono PCM between arbitrary sample rates using linear
// interpolation. Vendor MP3s arrive at 22.05 or 44.1 kHz, so this cannot
// reuse the telephony-rate converter in pkg/audio.
func resampleMono(pcm []int16, from, to int) []int16 {
	if from == to || len(pcm) == 0 {
		return pcm
	}
	outLen := int(int64(len(pcm)) * int64(to) / int64(from))
	if outLen == 0 {
		return nil
	}
	out := make([]int16, outLen)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(pcm)-1 {
			out[i] = pcm[len(pcm)-1]
			continue
		}
		frac := pos - float64(idx)
		a, b := float64(pcm[idx]), float64(pcm[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}
	return out
}
