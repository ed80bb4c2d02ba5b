package audio

import (
	"errors"
	"testing"
)

// referenceDecode is the textbook CCITT G.711 expansion, written differently
// from the table builder on purpose so the two act as cross-checks.
func referenceDecode(code byte) int16 {
	u := ^code
	t := (int32(u&0x0F)<<3 + 0x84) << ((u >> 4) & 0x07)
	if u&0x80 != 0 {
		return int16(0x84 - t)
	}
	return int16(t - 0x84)
}

func TestDecodeULaw_MatchesReferenceTable(t *testing.T) {
	for i := 0; i < 256; i++ {
		code := byte(i)
		got := DecodeULaw([]byte{code})[0]
		if want := referenceDecode(code); got != want {
			t.Fatalf("DecodeULaw(0x%02X) = %d, want %d", code, got, want)
		}
	}
}

func TestDecodeULaw_KnownValues(t *testing.T) {
	tests := []struct {
		code byte
		want int16
	}{
		{0x00, -32124},
		{0x80, 32124},
		{0xFF, 0},
		{0x7F, 0},
	}
	for _, tt := range tests {
		if got := DecodeULaw([]byte{tt.code})[0]; got != tt.want {
			t.Fatalf("DecodeULaw(0x%02X) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestULawRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		code := byte(i)
		back := EncodeULaw(DecodeULaw([]byte{code}))[0]
		if back == code {
			continue
		}
		// 0x7F and 0xFF both decode to zero; the encoder is entitled to pick
		// either representation of silence.
		if DecodeULaw([]byte{code})[0] == 0 && DecodeULaw([]byte{back})[0] == 0 {
			continue
		}
		t.Fatalf("EncodeULaw(DecodeULaw(0x%02X)) = 0x%02X", code, back)
	}
}

func TestEncodeULaw_Clipping(t *testing.T) {
	max := EncodeULaw([]int16{32767})[0]
	clip := EncodeULaw([]int16{32635})[0]
	if max != clip {
		t.Fatalf("encode(32767) = 0x%02X, want clipped value 0x%02X", max, clip)
	}
	if got := EncodeULaw([]int16{-32768})[0]; got != ^(byte(0x80) | 0x7F) {
		// Most negative sample clips to the largest negative code.
		if DecodeULaw([]byte{got})[0] != -32124 {
			t.Fatalf("encode(-32768) = 0x%02X, decodes to %d, want -32124",
				got, DecodeULaw([]byte{got})[0])
		}
	}
}

func TestBytesToPCM16_OddLength(t *testing.T) {
	_, err := BytesToPCM16([]byte{0x01, 0x02, 0x03})
	var codecErr *CodecError
	if !errors.As(err, &codecErr) {
		t.Fatalf("BytesToPCM16 odd length error = %v, want *CodecError", err)
	}
}

func TestPCM16Bytes_RoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 12345, -12345}
	out, err := BytesToPCM16(PCM16ToBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d = %d, want %d", i, out[i], in[i])
		}
	}
}
