package models

import "fmt"

// NotificationResult is the outcome of one change notification attempt.
// Failures are reported here instead of as errors so the edit path never fails.
type NotificationResult struct {
	ID         string
	Delivered  bool
	Skipped    bool // no webhook URL configured
	StatusCode int  // 0 when the request never got a response
	Err        error
}

// Status is the metric/log label for the outcome
func (r NotificationResult) Status() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Delivered:
		return "delivered"
	case r.StatusCode != 0:
		return "rejected"
	default:
		return "transport_error"
	}
}

func (r NotificationResult) String() string {
	switch r.Status() {
	case "skipped":
		return "notification skipped: no webhook configured"
	case "delivered":
		return fmt.Sprintf("notification %s delivered (HTTP %d)", r.ID, r.StatusCode)
	case "rejected":
		return fmt.Sprintf("notification %s rejected (HTTP %d)", r.ID, r.StatusCode)
	default:
		return fmt.Sprintf("notification %s failed: %v", r.ID, r.Err)
	}
}
