package apiv1

// Pong is the health check response body
type Pong struct {
	Ping string `json:"ping"`
}
