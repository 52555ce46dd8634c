package dto

// NotifyRequest binds from JSON or form bodies. Both fields are optional.
type NotifyRequest struct {
	Title   string `json:"title" form:"title"`
	Message string `json:"message" form:"message"`
}

type NotifyResponse struct {
	ID      string `json:"id"`
	Reply   string `json:"reply"`
	Outcome string `json:"outcome"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
