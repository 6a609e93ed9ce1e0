package dto

// SpeechRequest 语音合成请求
type SpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// Voice 语音选项
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VoicesResponse voice catalogue and the server default
type VoicesResponse struct {
	Voices  []Voice `json:"voices"`
	Default string  `json:"default"`
}
