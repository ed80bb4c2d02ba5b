package audio

const (
	// InboundFrameSize is the size of one inbound media frame: 20 ms of 8-bit
	// companded audio at 8 kHz.
	InboundFrameSize = 160

	// OutboundChunkSize is the payload size used for outbound media: 80 ms at
	// 8 kHz, the stream's recommended playback unit.
	OutboundChunkSize = 640
)

// SplitFrames splits companded audio into chunks of at most chunkSize bytes
// for outbound playback. The final chunk may be shorter and is sent unpadded;
// every chunk remains a whole number of 1-byte samples.
func SplitFrames(mulaw []byte, chunkSize int) [][]byte {
	if chunkSize <= 0 || len(mulaw) == 0 {
		return nil
	}
	chunks := make([][]byte, 0, (len(mulaw)+chunkSize-1)/chunkSize)
	for i := 0; i < len(mulaw); i += chunkSize {
		end := i + chunkSize
		if end > len(mulaw) {
			end = len(mulaw)
		}
		chunks = append(chunks, mulaw[i:end])
	}
	return chunks
}
