// Package docs holds the OpenAPI description served under /swagger.
//
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/ask": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ask"],
                "summary": "Ask a question",
                "parameters": [
                    {"description": "question or messages", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AskResponse"}},
                    "400": {"description": "Question or messages are required", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "API key not configured", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/tts": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["audio/wav"],
                "tags": ["tts"],
                "summary": "Synthesize speech",
                "parameters": [
                    {"description": "text and optional voice", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SpeechRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Text is required", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "413": {"description": "Text is too long for TTS", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/tts/voices": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tts"],
                "summary": "List voices",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VoicesResponse"}}
                }
            }
        },
        "/api/logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List performance logs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LogsResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "Clear performance logs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ClearLogsResponse"}}
                }
            }
        },
        "/api/upstream/check": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Upstream connectivity check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UpstreamCheckResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.UpstreamCheckResponse"}}
                }
            }
        },
        "/ping": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Ping 健康检查", "responses": {"200": {"description": "OK"}}}
        },
        "/health/live": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "存活检查", "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "就绪检查", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "definitions": {
        "dto.AskMessage": {
            "type": "object",
            "properties": {"role": {"type": "string"}, "content": {"type": "string"}}
        },
        "dto.AskRequest": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/dto.AskMessage"}}
            }
        },
        "dto.TokenUsage": {
            "type": "object",
            "properties": {"prompt": {"type": "integer"}, "completion": {"type": "integer"}, "total": {"type": "integer"}}
        },
        "dto.AskResponse": {
            "type": "object",
            "properties": {"answer": {"type": "string"}, "tokens": {"$ref": "#/definitions/dto.TokenUsage"}}
        },
        "dto.SpeechRequest": {
            "type": "object",
            "properties": {"text": {"type": "string"}, "voice": {"type": "string"}}
        },
        "dto.Voice": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "name": {"type": "string"}}
        },
        "dto.VoicesResponse": {
            "type": "object",
            "properties": {
                "voices": {"type": "array", "items": {"$ref": "#/definitions/dto.Voice"}},
                "default": {"type": "string"}
            }
        },
        "dto.LogsResponse": {
            "type": "object",
            "properties": {
                "logs": {"type": "array", "items": {"type": "object"}},
                "count": {"type": "integer"}
            }
        },
        "dto.ClearLogsResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}}
        },
        "dto.UpstreamCheckResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "hasApiKey": {"type": "boolean"},
                "message": {"type": "string"},
                "answer": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Groq Q&A Server",
	Description:      "Question answering and text-to-speech proxy for an OpenAI-compatible upstream",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
