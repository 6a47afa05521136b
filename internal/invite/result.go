package invite

import (
	"fmt"
	"net/http"
)

// Result is either a Success or a Failure.
type Result interface {
	Succeeded() bool
	Response() Response
	isResult()
}

// Response is the wire shape shared by the HTTP API and the CLI.
type Response struct {
	Success    bool   `json:"success"`
	StatusCode *int   `json:"status_code,omitempty"`
	Data       any    `json:"data"`
	Error      string `json:"error,omitempty"`
}

// Success is an upstream 200.
type Success struct {
	Data any
}

func (Success) Succeeded() bool { return true }

func (s Success) Response() Response {
	status := http.StatusOK
	return Response{Success: true, StatusCode: &status, Data: s.Data}
}

func (Success) isResult() {}

// Failure carries the reason a call did not succeed. Status is only set when
// the upstream actually answered.
type Failure struct {
	Kind    Kind
	Status  *int
	Message string
	Data    any
}

func (Failure) Succeeded() bool { return false }

func (f Failure) Response() Response {
	return Response{Success: false, StatusCode: f.Status, Data: f.Data, Error: f.Message}
}

// Err exposes the failure as an error matching one of the Err* sentinels.
func (f Failure) Err() error {
	return fmt.Errorf("%w: %s", f.Kind.sentinel(), f.Message)
}

func (Failure) isResult() {}

func validationFailure(message string) Failure {
	return Failure{Kind: KindValidation, Message: message}
}

func configurationFailure(message string) Failure {
	return Failure{Kind: KindConfiguration, Message: message}
}

func transportFailure(cause error) Failure {
	return Failure{Kind: KindTransport, Message: fmt.Sprintf("Request failed: %v", cause)}
}

func upstreamFailure(status int, data any) Failure {
	return Failure{
		Kind:    KindUpstream,
		Status:  &status,
		Message: fmt.Sprintf("HTTP %d", status),
		Data:    data,
	}
}

// HTTPStatus maps a result onto the status the portal answers with.
func HTTPStatus(r Result) int {
	switch res := r.(type) {
	case Success:
		return http.StatusOK
	case Failure:
		switch res.Kind {
		case KindValidation:
			return http.StatusBadRequest
		case KindUpstream:
			if res.Status != nil && *res.Status != 0 {
				return *res.Status
			}
		}
	}
	return http.StatusInternalServerError
}
