package client

const (
	apiPrefix = "/api"

	endpointAsk           = apiPrefix + "/ask"            // POST
	endpointTTS           = apiPrefix + "/tts"            // POST
	endpointVoices        = apiPrefix + "/tts/voices"     // GET
	endpointLogs          = apiPrefix + "/logs"           // GET, DELETE
	endpointUpstreamCheck = apiPrefix + "/upstream/check" // GET

	endpointReady = "/health/ready"
)
