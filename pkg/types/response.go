package types

// SuccessEnvelope wraps every 2xx body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// Message is the payload of mutations that only confirm what happened, such
// as "Médico removido com sucesso.".
type Message struct {
	Message string `json:"message"`
}

// APIError carries a stable code and a pt-BR message safe to show to staff.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
