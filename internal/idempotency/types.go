package idempotency

import "time"

// Status values for idempotency entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// IdempotencyRecord is the shape persisted in the idempotency DynamoDB table.
// One record exists per submit attempt key.
type IdempotencyRecord struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`
	DraftID        string    `dynamodbav:"draft_id"`
	RequestHash    string    `dynamodbav:"request_hash,omitempty"`    // fingerprint of the bulk order sent
	OrderID        string    `dynamodbav:"order_id,omitempty"`        // set by the backend on success
	ResponseBody   string    `dynamodbav:"response_body,omitempty"`   // small responses only
	ResponseStatus int       `dynamodbav:"response_status,omitempty"` // e.g., 201
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL epoch seconds
	Note           string    `dynamodbav:"note,omitempty"`
}

// Matches reports whether a retry for draftID with requestHash is the same
// request this record was created for. Records written without a hash match
// any request from the same draft.
func (r IdempotencyRecord) Matches(draftID, requestHash string) bool {
	if r.DraftID != draftID {
		return false
	}
	return r.RequestHash == "" || r.RequestHash == requestHash
}
