package dto

// UpstreamCheckResponse upstream connectivity probe result
type UpstreamCheckResponse struct {
	Success   bool   `json:"success,omitempty"`
	HasAPIKey bool   `json:"hasApiKey"`
	Message   string `json:"message,omitempty"`
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
