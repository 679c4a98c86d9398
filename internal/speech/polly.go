// File: internal/speech/polly.go
package speech

import (
	"context"
	"fmt"
	"io"

	appconfig "polly-relay/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
)

// pollyAPI 只取用 *polly.Client 的 SynthesizeSpeech，便於測試替換
type pollyAPI interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

var (
	loadAWSConfig = config.LoadDefaultConfig
	newPollyAPI   = func(cfg aws.Config, optFns ...func(*polly.Options)) pollyAPI {
		return polly.NewFromConfig(cfg, optFns...)
	}
	readAll = io.ReadAll
)

type PollySynthesizer struct {
	client pollyAPI
}

// NewPollySynthesizer 建立 Polly client。未設定 access key 時沿用 AWS 預設憑證鏈
func NewPollySynthesizer(ctx context.Context, cfg appconfig.SpeechConfig) (*PollySynthesizer, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewPollySynthesizer: %w", err)
	}

	client := newPollyAPI(awsCfg, func(o *polly.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &PollySynthesizer{client: client}, nil
}

// Synthesize 呼叫 SynthesizeSpeech 並將整段音訊讀進記憶體
func (p *PollySynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	out, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		OutputFormat: types.OutputFormatMp3,
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(voice),
	})
	if err != nil {
		return nil, fmt.Errorf("SynthesizeSpeech: %w", err)
	}
	if out.AudioStream == nil {
		return nil, fmt.Errorf("SynthesizeSpeech: empty audio stream")
	}
	defer out.AudioStream.Close()

	audio, err := readAll(out.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("read audio stream: %w", err)
	}
	return audio, nil
}
