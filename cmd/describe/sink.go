package main

import (
	"os"

	"github.com/satriahrh/snapspeak/domain/repositories"
)

// fileSink writes the audio of a single utterance to a file
type fileSink struct {
	file      *os.File
	completed bool
	err       error
}

var _ repositories.AudioSink = (*fileSink)(nil)

func (s *fileSink) BeginUtterance(utteranceID, text string) error { return nil }

func (s *fileSink) WriteAudio(utteranceID string, chunk []byte) error {
	if _, err := s.file.Write(chunk); err != nil {
		s.err = err
		return err
	}
	return nil
}

func (s *fileSink) EndUtterance(utteranceID string, completed bool) error {
	s.completed = completed
	return nil
}
