// Package extract defines the contracts for external text-extraction
// collaborators. The core consumes only the plain text they hand over; PDF
// parsing, speech-to-text, and media download mechanics live behind these
// interfaces.
package extract

import (
	"context"
	"fmt"
)

// TextExtractor turns an external source (file path, media URL) into plain
// text ready for ingestion.
type TextExtractor interface {
	ExtractText(ctx context.Context, source string) (string, error)
}

// AudioFormat is a recognized audio container for transcription input.
type AudioFormat string

// Recognized audio formats.
const (
	FormatWAV  AudioFormat = "wav"
	FormatMP3  AudioFormat = "mp3"
	FormatOpus AudioFormat = "opus"
)

// FetchOptions configures a media fetch-and-transcode collaborator. Every
// field is enumerated and validated at construction; there is no pass-through
// of arbitrary options to the underlying tool.
type FetchOptions struct {
	format     AudioFormat
	outputDir  string
	audioCodec string
}

// NewFetchOptions validates and builds FetchOptions. outputDir must be
// non-empty; codec may be empty (tool default).
func NewFetchOptions(format AudioFormat, outputDir, audioCodec string) (FetchOptions, error) {
	switch format {
	case FormatWAV, FormatMP3, FormatOpus:
	default:
		return FetchOptions{}, fmt.Errorf("unrecognized audio format %q", format)
	}
	if outputDir == "" {
		return FetchOptions{}, fmt.Errorf("output dir is required")
	}
	return FetchOptions{format: format, outputDir: outputDir, audioCodec: audioCodec}, nil
}

// Format returns the audio container format.
func (o FetchOptions) Format() AudioFormat { return o.format }

// OutputDir returns the directory fetched media is written to.
func (o FetchOptions) OutputDir() string { return o.outputDir }

// AudioCodec returns the codec override, empty for the tool default.
func (o FetchOptions) AudioCodec() string { return o.audioCodec }
