package audio

import "encoding/binary"

// WrapWAV wraps raw PCM samples in a minimal RIFF/WAVE container (PCM format,
// 16 bits per sample) so batch STT backends can consume them. channels values
// other than 1 are only meaningful if the samples are already interleaved.
func WrapWAV(pcm []int16, sampleRate, channels int) []byte {
	data := PCM16ToBytes(pcm)
	const headerSize = 44
	out := make([]byte, headerSize+len(data))

	blockAlign := channels * 2
	byteRate := sampleRate * blockAlign

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(data)))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)            // fmt chunk size
	binary.LittleEndian.PutUint16(out[20:22], 1)             // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], 16) // bits per sample

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(data)))
	copy(out[44:], data)

	return out
}
