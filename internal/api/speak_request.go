package api

// SpeakRequest 兩個欄位皆可省略，由伺服器補上預設值
// swagger:model api.SpeakRequest
type SpeakRequest struct {
	Text  string `json:"text" example:"Hello from Polly"`
	Voice string `json:"voice" example:"Joanna"`
}
