package tx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the transaction response body for HTTP 200. Error fields are
// present exactly when accepted is false.
type Envelope struct {
	TxID         string `json:"txId"`
	Accepted     bool   `json:"accepted"`
	StateVersion uint64 `json:"stateVersion"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// ErrorBody is the body of non-200 transport-level responses.
type ErrorBody struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Result is what the processor hands back to the transport: a status code
// and the exact body bytes. Replay marks a cache hit.
type Result struct {
	StatusCode int
	Body       []byte
	Replay     bool
}

func envelopeResult(txID string, version uint64, rej *rejection) Result {
	env := Envelope{TxID: txID, StateVersion: version}
	if rej == nil {
		env.Accepted = true
	} else {
		env.ErrorCode = rej.code
		env.ErrorMessage = rej.msg
	}
	body, _ := json.Marshal(env)
	return Result{StatusCode: http.StatusOK, Body: body}
}

// ErrorResult builds a non-200 response body.
func ErrorResult(status int, code, msg string) Result {
	body, _ := json.Marshal(ErrorBody{ErrorCode: code, ErrorMessage: msg})
	return Result{StatusCode: status, Body: body}
}
