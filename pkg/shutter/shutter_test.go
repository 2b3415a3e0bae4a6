package shutter

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func samplesOf(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func pcmOf(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// wavFile builds a minimal 16-bit PCM RIFF file.
func wavFile(rate, channels int, samples ...int16) []byte {
	data := pcmOf(samples...)
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(data)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

func TestConvertMonoToStereo(t *testing.T) {
	out := samplesOf(convertAudio(pcmOf(1, -2, 3), SampleRate, 1, SampleRate, 2))
	want := []int16{1, 1, -2, -2, 3, 3}
	if len(out) != len(want) {
		t.Fatalf("Expected %d samples, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("Sample %d = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestConvertResample(t *testing.T) {
	in := make([]int16, 22050)
	for i := range in {
		in[i] = 1000
	}
	out := samplesOf(convertAudio(pcmOf(in...), 22050, 1, 44100, 2))
	if len(out) != 44100*2 {
		t.Fatalf("Expected one second of stereo at 44.1kHz, got %d samples", len(out))
	}
	for i, s := range out {
		if s != 1000 {
			t.Fatalf("Sample %d = %d, want 1000", i, s)
		}
	}
}

func TestDecodeWav(t *testing.T) {
	pcm, err := Decode("click.wav", wavFile(SampleRate, 1, 10, 20, 30))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := samplesOf(pcm); len(got) != 6 || got[0] != 10 || got[5] != 30 {
		t.Errorf("Unexpected samples %v", got)
	}
}

func TestDecodeRejects(t *testing.T) {
	if _, err := Decode("click.ogg", []byte("OggS")); err == nil {
		t.Error("Expected an error for an unsupported format")
	}
	if _, err := Decode("click.wav", []byte("not a wav")); err == nil {
		t.Error("Expected an error for a broken wav")
	}
}
