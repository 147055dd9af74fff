package types

// DataEnvelope wraps every successful response body.
type DataEnvelope struct {
	Data any `json:"data"`
}

// ErrorBody is what clients see of a failure. Details only appear for codes
// that expose them.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// Valid reports whether the envelope carries an error code.
func (e ErrorEnvelope) Valid() bool {
	return e.Error.Code != ""
}
