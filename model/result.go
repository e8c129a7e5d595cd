package model

// GenerationResult is the uniform outcome of a generation attempt: the
// rendered document, and whether the deterministic fallback produced it
// instead of the generative capability.
type GenerationResult struct {
	Readme       string `json:"readme"`
	UsedFallback bool   `json:"isGenericFallback"`
}
