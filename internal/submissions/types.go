package submissions

import "time"

// Submission statuses
const (
	StatusPending   = "PENDING"
	StatusSubmitted = "SUBMITTED"
	StatusFailed    = "FAILED"
)

// Submission is the audit record of one submit attempt, stored in the
// submissions DynamoDB table next to its idempotency record.
type Submission struct {
	SubmissionKey string    `dynamodbav:"submission_key"` // PK, same value as the idempotency key
	DraftID       string    `dynamodbav:"draft_id"`
	Status        string    `dynamodbav:"status"` // PENDING | SUBMITTED | FAILED
	OrderID       string    `dynamodbav:"order_id,omitempty"`
	PayeeEmail    string    `dynamodbav:"payee_email"`
	PaymentMode   string    `dynamodbav:"payment_mode"`
	Amount        string    `dynamodbav:"amount"` // decimal text
	Recipients    int       `dynamodbav:"recipients"`
	BulkOrder     string    `dynamodbav:"bulk_order"` // JSON body sent to the backend
	Note          string    `dynamodbav:"note,omitempty"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
	UpdatedAt     time.Time `dynamodbav:"updated_at"`
	Attempts      int       `dynamodbav:"attempts,omitempty"`
}
