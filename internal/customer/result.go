// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// User-visible failure messages.
const (
	MsgInvalidInput = "Something went wrong with processing user input"
	MsgServerError  = "Looks like we are experiencing a server error, please try again in a few minutes."
	MsgGeneric      = "Something went wrong. Please try again later."
	MsgBadLogin     = "Your email address or password is incorrect. Try signing in again or reset your password."
)

// Result is the outcome of a form action as shown to the user.
// It encodes as {"status":"success","data":...} or {"status":"error","error":"..."}.
type Result struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Success builds a successful result.
func Success(data any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// Failure builds an error result with a displayable message.
func Failure(msg string) Result {
	return Result{Status: StatusError, Error: msg}
}

// OK reports whether the action succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}
