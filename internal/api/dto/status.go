package dto

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type SessionStatusResponse struct {
	Session  string            `json:"session"`
	Statuses map[string]string `json:"statuses"`
}
