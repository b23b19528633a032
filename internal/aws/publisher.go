package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// BulkOrderCreated is the payload sent from API -> SQS -> Worker once the
// order-creation endpoint has accepted a bulk order.
type BulkOrderCreated struct {
	OrderID       string `json:"order_id"`
	DraftID       string `json:"draft_id"`
	PayeeEmail    string `json:"payee_email"`
	PaymentMode   string `json:"payment_mode"`
	Amount        string `json:"amount"` // decimal text
	Recipients    int    `json:"recipients"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Publisher wraps an SQS client and a queue URL.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// PublishBulkOrderCreated sends msg as JSON with its ids as message attributes.
func (p *Publisher) PublishBulkOrderCreated(ctx context.Context, msg BulkOrderCreated) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal bulk order created: %w", err)
	}
	attrs := map[string]string{
		"event":    "BulkOrderCreated",
		"order_id": msg.OrderID,
		"draft_id": msg.DraftID,
	}
	if msg.CorrelationID != "" {
		attrs["correlation_id"] = msg.CorrelationID
	}
	return p.SendMessage(ctx, string(body), attrs)
}

// SendMessage sends a message to SQS. messageBody should be a JSON string.
// attributes map[string]string -> sent as MessageAttributes.
func (p *Publisher) SendMessage(ctx context.Context, messageBody string, attributes map[string]string) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: &messageBody,
	}
	if len(attributes) > 0 {
		msgAttrs := map[string]sqstypes.MessageAttributeValue{}
		for k, v := range attributes {
			if v == "" {
				continue
			}
			msgAttrs[k] = sqstypes.MessageAttributeValue{
				DataType:    awsString("String"),
				StringValue: awsString(v),
			}
		}
		input.MessageAttributes = msgAttrs
	}

	_, err := p.SQS.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// awsString helper
func awsString(s string) *string { return &s }
