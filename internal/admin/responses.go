package admin

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse reports each dependency check by name. A passing check
// has the value "ok"; a failing one carries the error text.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// PendingMessagesResponse is the queue depth by message type.
type PendingMessagesResponse struct {
	Pending map[string]int `json:"pending"`
	Total   int            `json:"total"`
}
