package stt

import (
	"context"
	"fmt"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText for Google Cloud. Word
// confidence is enabled so reading practice can tell a skipped word
// from a garbled one.
type GoogleSpeechToText struct{}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// recognitionConfig maps our audio config onto the provider's
func recognitionConfig(config repositories.AudioConfig) (*speechpb.RecognitionConfig, error) {
	encoding, err := audioEncoding(config.Encoding)
	if err != nil {
		return nil, err
	}
	return &speechpb.RecognitionConfig{
		Encoding:                   encoding,
		SampleRateHertz:            int32(config.SampleRate),
		LanguageCode:               config.Language,
		EnableWordConfidence:       true,
		EnableAutomaticPunctuation: true,
	}, nil
}

// InitTranscribeStreaming opens a streaming recognition exchange scoped
// to ctx. The caller must finish it with End or abandon it with Close;
// either way the provider connection is released.
func (g *GoogleSpeechToText) InitTranscribeStreaming(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStreaming, error) {
	recognition, err := recognitionConfig(config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)

	client, err := speech.NewClient(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		client.Close()
		cancel()
		return nil, fmt.Errorf("failed to create streaming recognize: %w", err)
	}

	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config:          recognition,
				InterimResults:  false,
				SingleUtterance: true,
			},
		},
	}); err != nil {
		stream.CloseSend()
		client.Close()
		cancel()
		return nil, fmt.Errorf("failed to send streaming config: %w", err)
	}

	s := &googleStream{
		client: client,
		stream: stream,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	// Start receiving immediately so Close can always unblock Recv
	// through cancellation.
	go s.receive()

	return s, nil
}

type googleStream struct {
	client *speech.Client
	stream speechpb.Speech_StreamingRecognizeClient
	ctx    context.Context
	cancel context.CancelFunc

	sent bool

	// receive() owns result and err until done is closed
	done   chan struct{}
	result *repositories.Transcription
	err    error

	releaseOnce sync.Once
}

// Stream forwards one chunk of microphone audio
func (g *googleStream) Stream(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	g.sent = true

	if err := g.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: data,
		},
	}); err != nil {
		return fmt.Errorf("failed to send audio data: %w", err)
	}
	return nil
}

// End signals end of audio and waits for the final transcription
func (g *googleStream) End() (*repositories.Transcription, error) {
	defer g.release()

	if !g.sent {
		return nil, fmt.Errorf("no audio data received")
	}

	if err := g.stream.CloseSend(); err != nil {
		return nil, fmt.Errorf("failed to close send stream: %w", err)
	}

	select {
	case <-g.ctx.Done():
		return nil, fmt.Errorf("cancelled while waiting for result: %w", g.ctx.Err())
	case <-g.done:
	}

	if g.err != nil {
		return nil, g.err
	}
	if g.result == nil || g.result.Text == "" {
		return nil, fmt.Errorf("no speech detected in audio")
	}
	return g.result, nil
}

// Close abandons the exchange without a result. Cancelling the stream
// context unblocks the receiver and tears down the gRPC stream.
func (g *googleStream) Close() error {
	g.release()
	return nil
}

func (g *googleStream) release() {
	g.releaseOnce.Do(func() {
		g.cancel()
		g.client.Close()
	})
}

// receive drains recognition responses, keeping the final transcript
// and its per-word confidences.
func (g *googleStream) receive() {
	defer close(g.done)

	result := &repositories.Transcription{}
	for {
		resp, err := g.stream.Recv()
		if err == io.EOF {
			g.result = result
			return
		}
		if err != nil {
			if g.ctx.Err() != nil {
				g.err = g.ctx.Err()
			} else {
				g.err = fmt.Errorf("failed to receive response: %w", err)
			}
			return
		}

		for _, res := range resp.Results {
			if !res.IsFinal || len(res.Alternatives) == 0 {
				continue
			}
			appendAlternative(result, res.Alternatives[0])
		}
	}
}

// TranscribeAudio recognizes a complete recording in one request
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (*repositories.Transcription, error) {
	if len(audioData) == 0 {
		return nil, fmt.Errorf("no audio data received")
	}

	recognition, err := recognitionConfig(config)
	if err != nil {
		return nil, err
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: recognition,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recognize audio: %w", err)
	}

	result := &repositories.Transcription{}
	for _, res := range resp.Results {
		if len(res.Alternatives) == 0 {
			continue
		}
		appendAlternative(result, res.Alternatives[0])
	}
	if result.Text == "" {
		return nil, fmt.Errorf("no speech detected in audio")
	}
	return result, nil
}

// appendAlternative folds one recognition alternative into the result
func appendAlternative(result *repositories.Transcription, alt *speechpb.SpeechRecognitionAlternative) {
	if result.Text == "" {
		result.Text = alt.Transcript
	} else {
		result.Text += " " + alt.Transcript
	}
	for _, w := range alt.Words {
		result.Words = append(result.Words, repositories.RecognizedWord{
			Word:       w.Word,
			Confidence: float64(w.Confidence),
		})
	}
}

// audioEncoding converts our encoding name to the provider's enum
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported audio encoding: %s", encoding)
	}
}
