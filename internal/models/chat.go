package models

// ChatRequest is the body of POST /api/v1/response and of each WebSocket
// frame.
type ChatRequest struct {
	Prompt string `json:"prompt" example:"Show me your best-selling rings"`
}

// ChatResponse is a successful answer.
type ChatResponse struct {
	Response  string `json:"response"`
	Redirect  string `json:"redirect,omitempty" example:"/catalog/product/42"`
	ProductID int    `json:"product_id,omitempty" example:"42"`
}

// HealthResponse is returned by the health and readiness probes.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
