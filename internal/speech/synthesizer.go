// File: internal/speech/synthesizer.go
package speech

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// GenericErrorMessage 非供應商 API 錯誤時回給客戶端的訊息
const GenericErrorMessage = "speech synthesis failed"

// Synthesizer 將文字轉為 mp3 音訊
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Defaults 請求未提供 text/voice 時的預設值
type Defaults struct {
	Text  string
	Voice string
}

// Resolve 以預設值補上空白欄位
func (d Defaults) Resolve(text, voice string) (string, string) {
	if strings.TrimSpace(text) == "" {
		text = d.Text
	}
	if strings.TrimSpace(voice) == "" {
		voice = d.Voice
	}
	return text, voice
}

// ErrorMessage 供應商回報的 API 錯誤（例如 voice id 不存在）原樣回傳，
// 其他錯誤（網路、讀取音訊）一律隱藏
func ErrorMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.ErrorMessage(); msg != "" {
			return msg
		}
		if code := apiErr.ErrorCode(); code != "" {
			return code
		}
	}
	return GenericErrorMessage
}
