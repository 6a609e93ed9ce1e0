package domain

import "context"

// Voice identifiers accepted by the speech service.
const (
	VoiceCeleste = "Celeste-PlayAI"
	VoiceGail    = "Gail-PlayAI"
	VoiceQuinn   = "Quinn-PlayAI"
	VoiceDeedee  = "Deedee-PlayAI"

	DefaultVoice = VoiceCeleste
)

// Voice 语音选项
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Voices is the built-in voice catalogue, default first.
var Voices = []Voice{
	{ID: VoiceCeleste, Name: "Celeste (Soothing Female)"},
	{ID: VoiceGail, Name: "Gail"},
	{ID: VoiceQuinn, Name: "Quinn"},
	{ID: VoiceDeedee, Name: "Deedee"},
}

// SpeechRequest 语音合成请求
type SpeechRequest struct {
	Text  string
	Voice string
}

// SpeechCall is one request to the speech service.
type SpeechCall struct {
	Model  string
	Voice  string
	Input  string
	Format string
}

// Audio synthesized audio and its declared content type
type Audio struct {
	Data        []byte
	ContentType string
}

// SpeechProvider 上游语音合成服务
type SpeechProvider interface {
	// Synthesize returns the raw reply body. Non-success replies are returned as
	// UpstreamError carrying the upstream status and message verbatim.
	Synthesize(ctx context.Context, call SpeechCall) (*Audio, error)
}

// SpeechUsecase 语音合成用例interface
type SpeechUsecase interface {
	Synthesize(ctx context.Context, req *SpeechRequest) (*Audio, error)
	Voices() []Voice
	DefaultVoice() string
}
