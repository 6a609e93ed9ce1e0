package dto

import "github.com/Vdnsh/groq-qna/pkg/perflog"

// LogsResponse 性能日志列表，newest first
type LogsResponse struct {
	Logs  []perflog.Record `json:"logs"`
	Count int              `json:"count"`
}

// ClearLogsResponse 清空日志响应
type ClearLogsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
