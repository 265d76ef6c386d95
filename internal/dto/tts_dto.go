package dto

type SynthesizeSpeechRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// SynthesizeSpeechResult carries the raw audio back to the controller.
type SynthesizeSpeechResult struct {
	Audio       []byte
	ContentType string
}
