package domain

// ModelRequest is one call to a generative text/vision model.
type ModelRequest struct {
	// Operation names the call for logs and metrics, e.g. "scan.extract".
	Operation string
	System    string
	Prompt    string
	Images    []ImageInput
	// JSON asks the provider for a JSON-only response where supported.
	JSON bool
}
