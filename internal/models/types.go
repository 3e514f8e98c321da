package models

// Input message
type GenerateModuleTasksInput struct {
	ModuleContent string `json:"moduleContent" jsonschema:"the text content of the syllabus module to generate tasks and applications for"`
}

// Output message
type GenerateModuleTasksOutput struct {
	IntroductoryMessage string `json:"introductoryMessage" jsonschema:"welcoming introductory message with learning tasks and real-world applications"`
}

// StreamRequest is the payload of one entry on the request stream.
type StreamRequest struct {
	RequestID     string `json:"request_id"`
	ModuleContent string `json:"moduleContent"`
}

// StreamReply is published on the reply stream for every consumed request.
// Exactly one of IntroductoryMessage and Error is set.
type StreamReply struct {
	RequestID           string `json:"request_id"`
	IntroductoryMessage string `json:"introductoryMessage,omitempty"`
	Error               string `json:"error,omitempty"`
}
