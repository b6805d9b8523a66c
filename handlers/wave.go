package handlers

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	allowedAudioExt   = ".wav"
	maxAudioSeconds   = 60
	speechSampleRate  = 16000
	waveHeaderLength  = 44
	wavePCMFormat     = 1
	waveBitsPerSample = 16
)

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < waveHeaderLength {
		return nil, errors.New("invalid WAV header length")
	}
	var header waveHeader
	if err := binary.Read(bytes.NewReader(data[:waveHeaderLength]), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}
	return &header, nil
}

// validateWave checks that audio is what the recognizer is configured for.
func validateWave(data []byte) error {
	h, err := parseWaveHeader(data)
	if err != nil {
		return err
	}
	switch {
	case h.AudioFormat != wavePCMFormat:
		return errors.New("audio must be uncompressed PCM")
	case h.NumChannels != 1:
		return fmt.Errorf("audio must be mono, got %d channels", h.NumChannels)
	case h.SampleRate != speechSampleRate:
		return fmt.Errorf("audio must be sampled at %d Hz, got %d", speechSampleRate, h.SampleRate)
	case h.BitsPerSample != waveBitsPerSample:
		return fmt.Errorf("audio must be %d-bit, got %d", waveBitsPerSample, h.BitsPerSample)
	}
	if h.ByteRate > 0 && h.DataSize/h.ByteRate > maxAudioSeconds {
		return fmt.Errorf("audio longer than %d seconds", maxAudioSeconds)
	}
	return nil
}
