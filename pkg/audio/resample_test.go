package audio

import (
	"errors"
	"testing"
)

func TestResample_Upsample(t *testing.T) {
	in := make([]int16, 800) // 100 ms at 8 kHz
	for i := range in {
		in[i] = int16(i * 10)
	}
	out, err := Resample(in, 8000, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := len(out), 1600; got < want-1 || got > want+1 {
		t.Fatalf("len = %d, want %d (±1)", got, want)
	}
	// Linear interpolation of a ramp must stay monotonic.
	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			t.Fatalf("output not monotonic at sample %d: %d < %d", i, out[i], out[i-1])
		}
	}
}

func TestResample_Downsample(t *testing.T) {
	in := make([]int16, 1600)
	out, err := Resample(in, 16000, 8000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := len(out), 800; got < want-1 || got > want+1 {
		t.Fatalf("len = %d, want %d (±1)", got, want)
	}
}

func TestResample_SameRate(t *testing.T) {
	in := []int16{1, 2, 3}
	out, err := Resample(in, 8000, 8000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &out[0] != &in[0] {
		t.Fatal("same-rate resample should return the input unchanged")
	}
}

func TestResample_UnsupportedRate(t *testing.T) {
	for _, rates := range [][2]int{{44100, 8000}, {8000, 48000}, {22050, 16000}} {
		_, err := Resample([]int16{0}, rates[0], rates[1])
		if !errors.Is(err, ErrUnsupportedRate) {
			t.Fatalf("Resample(%d, %d) error = %v, want ErrUnsupportedRate",
				rates[0], rates[1], err)
		}
	}
}
