package response

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the single envelope shared by every endpoint.
// Clients branch on `success` and, for some auth failures, on the
// machine-readable `errorMsg` tag.
type Response struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Data       any       `json:"data,omitempty"`
	Errors     any       `json:"errors,omitempty"`
	ErrorMsg   string    `json:"errorMsg,omitempty"`
}

func JSONOkResponse(w http.ResponseWriter, data any, message string, headers http.Header) error {
	if message == "" {
		message = "Request successful"
	}

	return JSONWithHeaders(w, &Response{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Data:       data,
	}, headers)
}

func JSONCreatedResponse(w http.ResponseWriter, data any, message string) error {
	if message == "" {
		message = "Request successful"
	}

	return JSONWithHeaders(w, &Response{
		Success:    true,
		StatusCode: http.StatusCreated,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Data:       data,
	}, nil)
}

func JSONErrorResponse(w http.ResponseWriter, errs any, message string, status int, errorMsg string, headers http.Header) error {
	if message == "" {
		message = "Request failed"
	}
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return JSONWithHeaders(w, &Response{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		Errors:     errs,
		ErrorMsg:   errorMsg,
	}, headers)
}

func JSONWithHeaders(w http.ResponseWriter, response *Response, headers http.Header) error {
	js, err := json.MarshalIndent(response, "", "\t")
	if err != nil {
		return err
	}

	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.StatusCode)

	w.Write(js)

	return nil
}
