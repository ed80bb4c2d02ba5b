// Package audio implements the signal path for the telephony pipeline:
// G.711 μ-law companding, 8↔16 kHz resampling, WAV container wrapping, and
// energy-based utterance segmentation.
//
// Unless stated otherwise, PCM values are 16-bit signed samples and PCM byte
// buffers are little-endian mono. Companded buffers are 8-bit μ-law at 8 kHz,
// the format carried by the telephony media stream.
package audio

import "fmt"

const (
	// ulawBias is the G.711 μ-law companding bias.
	ulawBias = 0x84

	// ulawClip is the largest linear magnitude representable after biasing.
	ulawClip = 32635
)

// CodecError reports a malformed audio buffer handed to the codec, typically
// an odd byte count where 16-bit PCM was expected. The offending frame is
// dropped by callers; a CodecError never terminates a call.
type CodecError struct {
	Op    string
	Bytes int
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("audio: %s: malformed buffer (%d bytes)", e.Op, e.Bytes)
}

// ulawDecodeTable maps each μ-law code to its 16-bit linear sample. The table
// is a hard compatibility contract with the telephony vendor's encoder: code
// 0x00 must decode to -32124 and 0xFF to 0.
var ulawDecodeTable [256]int16

func init() {
	for i := range ulawDecodeTable {
		u := ^byte(i)
		exponent := (u >> 4) & 0x07
		mantissa := u & 0x0F
		sample := ((int32(mantissa)<<3 + ulawBias) << exponent) - ulawBias
		if u&0x80 != 0 {
			sample = -sample
		}
		ulawDecodeTable[i] = int16(sample)
	}
}

// DecodeULaw expands companded μ-law bytes to linear PCM samples.
// Every input byte is a valid code, so decoding cannot fail.
func DecodeULaw(mulaw []byte) []int16 {
	pcm := make([]int16, len(mulaw))
	for i, b := range mulaw {
		pcm[i] = ulawDecodeTable[b]
	}
	return pcm
}

// EncodeULaw compresses linear PCM samples to companded μ-law bytes. Samples
// outside the companding range are clipped, so encoding cannot fail.
func EncodeULaw(pcm []int16) []byte {
	out := make([]byte, len(pcm))
	for i, s := range pcm {
		out[i] = encodeSample(s)
	}
	return out
}

func encodeSample(sample int16) byte {
	s := int32(sample)
	var sign byte
	if s < 0 {
		sign = 0x80
		s = -s
	}
	if s > ulawClip {
		s = ulawClip
	}
	s += ulawBias

	exponent := byte(0)
	for exp, mask := byte(7), int32(0x4000); exp > 0; exp, mask = exp-1, mask>>1 {
		if s&mask != 0 {
			exponent = exp
			break
		}
	}
	mantissa := byte(s>>(exponent+3)) & 0x0F
	return ^(sign | exponent<<4 | mantissa)
}

// BytesToPCM16 reinterprets little-endian 16-bit PCM bytes as samples.
// An odd byte count fails with a [*CodecError] rather than silently
// truncating.
func BytesToPCM16(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, &CodecError{Op: "bytes to pcm16", Bytes: len(data)}
	}
	pcm := make([]int16, len(data)/2)
	for i := range pcm {
		pcm[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return pcm, nil
}

// PCM16ToBytes serialises samples as little-endian 16-bit PCM bytes.
func PCM16ToBytes(pcm []int16) []byte {
	out := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
