package shutter

import "encoding/binary"

// convertAudio converts 16-bit PCM between sample rates and from mono to
// stereo. Other channel layouts pass through unchanged.
func convertAudio(pcmData []byte, fromRate, fromChannels, toRate, toChannels int) []byte {
	sampleCount := len(pcmData) / 2
	samples := make([]int16, sampleCount)
	for i := 0; i < sampleCount; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcmData[i*2 : i*2+2]))
	}

	stereo := samples
	if fromChannels == 1 && toChannels == 2 {
		stereo = make([]int16, sampleCount*2)
		for i, s := range samples {
			stereo[i*2] = s
			stereo[i*2+1] = s
		}
	}

	out := stereo
	if fromRate != toRate && fromRate > 0 && len(stereo) > 0 {
		// Resample frames, not samples, so channels stay interleaved.
		channels := toChannels
		if fromChannels != 1 {
			channels = fromChannels
		}
		frames := len(stereo) / channels
		ratio := float64(toRate) / float64(fromRate)
		newFrames := int(float64(frames) * ratio)
		out = make([]int16, newFrames*channels)

		for i := 0; i < newFrames; i++ {
			// Simple linear interpolation
			srcPos := float64(i) / ratio
			srcIdx := int(srcPos)
			frac := srcPos - float64(srcIdx)
			for c := 0; c < channels; c++ {
				if srcIdx >= frames-1 {
					out[i*channels+c] = stereo[(frames-1)*channels+c]
					continue
				}
				a := float64(stereo[srcIdx*channels+c])
				b := float64(stereo[(srcIdx+1)*channels+c])
				out[i*channels+c] = int16(a + (b-a)*frac)
			}
		}
	}

	result := make([]byte, len(out)*2)
	for i, s := range out {
		binary.LittleEndian.PutUint16(result[i*2:i*2+2], uint16(s))
	}
	return result
}
