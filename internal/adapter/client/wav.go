package client

import (
	"bytes"
	"encoding/binary"
	"mime"
	"strconv"
	"strings"
)

const (
	defaultSampleRate = 24000
	pcmBitsPerSample  = 16
	pcmChannels       = 1
)

// PCMToWAV prepends a RIFF header to raw little-endian 16-bit mono PCM so
// browsers can play it directly.
func PCMToWAV(pcm []byte, sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	blockAlign := pcmChannels * pcmBitsPerSample / 8
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(pcmChannels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(pcmBitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// isRawPCM reports whether mimeType names headerless PCM, such as
// "audio/L16;codec=pcm;rate=24000", and returns its sample rate.
func isRawPCM(mimeType string) (bool, int) {
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false, 0
	}
	if mediaType != "audio/l16" && !strings.EqualFold(params["codec"], "pcm") {
		return false, 0
	}
	rate, err := strconv.Atoi(params["rate"])
	if err != nil || rate <= 0 {
		rate = defaultSampleRate
	}
	return true, rate
}
