package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/charmbracelet/log"
)

// loadOpusAudio reads int16 length-prefixed opus frames for each mode's alert.
// Modes with a blank path are skipped.
func loadOpusAudio(modeToOpusContainerPath map[timer.Mode]string) (*opusAudioLoader, error) {
	audioPackets := make(map[timer.Mode][][]byte)
	for mode, opusContainerPath := range modeToOpusContainerPath {
		if opusContainerPath == "" {
			log.Info("no opusContainerPath - skip loading", "mode", mode)
			continue
		}
		log.Info("loading packets", "mode", mode, "opusContainerPath", opusContainerPath)
		packets, err := readOpusPackets(opusContainerPath)
		if err != nil {
			return nil, fmt.Errorf("load %s audio: %w", mode, err)
		}
		audioPackets[mode] = packets
	}
	return &opusAudioLoader{
		audioPackets: audioPackets,
	}, nil
}

func readOpusPackets(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint

	var packets [][]byte
	var frameLen int16
	for {
		if err := binary.Read(f, binary.LittleEndian, &frameLen); err != nil {
			if errors.Is(err, io.EOF) {
				return packets, nil
			}
			return nil, fmt.Errorf("read frame length: %w", err)
		}
		if frameLen < 0 {
			return nil, fmt.Errorf("negative frame length: %d", frameLen)
		}

		packet := make([]byte, frameLen)
		if _, err := io.ReadFull(f, packet); err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		packets = append(packets, packet)
	}
}

type opusAudioLoader struct {
	audioPackets map[timer.Mode][][]byte
}

func (m *opusAudioLoader) Load(mode timer.Mode) [][]byte {
	return m.audioPackets[mode]
}
