package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

const (
	sampleRateHertz = 16000
	// MaxAudioBytes caps uploads at roughly one minute of 16 kHz mono audio.
	MaxAudioBytes = 5 * 1024 * 1024
)

var ErrEmptyAudio = errors.New("audio is empty")

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, locale string) (string, error)
}

type GoogleSpeechTranscriber struct {
	client *speech.Client
}

func NewGoogleSpeechTranscriber(ctx context.Context, credentialsFile string) (*GoogleSpeechTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize speech client: %w", err)
	}
	return &GoogleSpeechTranscriber{client: client}, nil
}

func (t *GoogleSpeechTranscriber) Close() error { return t.client.Close() }

// LanguageCode maps the app locale to a recognizer language.
func LanguageCode(locale string) string {
	if locale == "es" {
		return "es-US"
	}
	return "en-US"
}

// Transcribe expects LINEAR16 mono audio sampled at 16 kHz.
func (t *GoogleSpeechTranscriber) Transcribe(ctx context.Context, audio []byte, locale string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   sampleRateHertz,
			LanguageCode:      LanguageCode(locale),
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript)
			transcript.WriteString(" ")
		}
	}
	return strings.TrimSpace(transcript.String()), nil
}
