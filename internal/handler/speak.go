// File: internal/handler/speak.go
package handler

import (
	"net/http"

	"polly-relay/internal/api"
	"polly-relay/internal/dto"
	"polly-relay/internal/logging"
	"polly-relay/internal/speech"

	"github.com/labstack/echo/v4"
)

const mimeAudioMPEG = "audio/mpeg"

// SpeakHandler 將文字轉為語音並直接回傳 mp3
// @Summary     文字轉語音
// @Description text/voice 皆可省略，未提供時使用伺服器預設值；voice 不在本地驗證
// @Tags        speech
// @Accept      json
// @Produce     audio/mpeg
// @Param       body body     api.SpeakRequest false "合成內容"
// @Success     200  {file}   binary
// @Failure     400  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Router      /speak [post]
func SpeakHandler(synth speech.Synthesizer, defaults speech.Defaults, log logging.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.SpeakRequest
		// 空 body 允許，全部使用預設值
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.HTTPError{Error: "invalid request body"})
		}
		text, voice := defaults.Resolve(req.Text, req.Voice)

		ctx := c.Request().Context()
		audio, err := synth.Synthesize(ctx, text, voice)
		if err != nil {
			log.Error(ctx, "speech synthesis failed",
				"voice", voice,
				"error", err,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return c.JSON(http.StatusInternalServerError, dto.HTTPError{Error: speech.ErrorMessage(err)})
		}

		log.Debug(ctx, "speech synthesized", "voice", voice, "bytes", len(audio))
		return c.Blob(http.StatusOK, mimeAudioMPEG, audio)
	}
}
