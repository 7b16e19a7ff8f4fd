package dto

// InvokeRequest is the body for POST /invoke.
type InvokeRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

// InvokeResponse is the pipeline result returned by POST /invoke.
type InvokeResponse struct {
	Answer        string   `json:"answer"`
	Sources       []string `json:"sources"`
	RouteDecision string   `json:"route_decision"`
	PIIDetected   bool     `json:"pii_detected"`
	Errors        []string `json:"errors"`
	LatencyMs     float64  `json:"latency_ms"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

type GraphResponse struct {
	Nodes       []string `json:"nodes"`
	Description string   `json:"description"`
}
