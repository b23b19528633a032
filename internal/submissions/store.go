package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/aws"
)

var (
	// ErrKeyExists is returned when the idempotency key of a new submission is already taken.
	ErrKeyExists = errors.New("idempotency key already exists")
	// ErrStatusMismatch is returned when a conditional status transition fails.
	ErrStatusMismatch = errors.New("status mismatch/conditional failed")
)

// Store encapsulates operations on the submissions table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new submissions Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// CreateWithIdempotencyTransaction atomically creates:
//   - idempotency record in idempotencyTable (with ConditionExpression attribute_not_exists(idempotency_key))
//   - submission record in the submissions table
//
// idempotencyItem must be a serializable struct with attribute idempotency_key present.
// Returns ErrKeyExists if the idempotency record already exists.
func (s *Store) CreateWithIdempotencyTransaction(ctx context.Context, idempotencyTable string, idempotencyItem interface{}, sub Submission) error {
	idempMap, err := attributevalue.MarshalMap(idempotencyItem)
	if err != nil {
		return fmt.Errorf("marshal idempotency item: %w", err)
	}

	now := s.nowFunc()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = StatusPending
	}

	subMap, err := attributevalue.MarshalMap(sub)
	if err != nil {
		return fmt.Errorf("marshal submission item: %w", err)
	}

	input := &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &idempotencyTable,
					Item:                idempMap,
					ConditionExpression: awsString("attribute_not_exists(idempotency_key)"),
				},
			},
			{
				Put: &types.Put{
					TableName: &s.tableName,
					Item:      subMap,
				},
			},
		},
	}

	_, err = s.client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return ErrKeyExists
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Restart replaces a FAILED submission with a fresh PENDING attempt carrying the
// newly built order. Returns ErrStatusMismatch if the stored record is not FAILED.
func (s *Store) Restart(ctx context.Context, sub Submission) error {
	prev, err := s.Get(ctx, sub.SubmissionKey)
	if err != nil {
		return err
	}
	if prev == nil || prev.Status != StatusFailed {
		return ErrStatusMismatch
	}

	sub.CreatedAt = prev.CreatedAt
	sub.UpdatedAt = s.nowFunc()
	sub.Status = StatusPending
	sub.Attempts = prev.Attempts + 1

	item, err := attributevalue.MarshalMap(sub)
	if err != nil {
		return fmt.Errorf("marshal submission item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                 &s.tableName,
		Item:                      item,
		ConditionExpression:       awsString("#s = :expected"),
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":expected": &types.AttributeValueMemberS{Value: StatusFailed}},
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Get fetches a submission by key. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, key string) (*Submission, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"submission_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var sub Submission
	if err := attributevalue.UnmarshalMap(out.Item, &sub); err != nil {
		return nil, fmt.Errorf("unmarshal submission: %w", err)
	}
	return &sub, nil
}

// MarkSubmitted moves PENDING -> SUBMITTED and records the backend order id.
func (s *Store) MarkSubmitted(ctx context.Context, key, orderID string) error {
	return s.transition(ctx, key, StatusPending, StatusSubmitted, "order_id", orderID)
}

// MarkFailed moves PENDING -> FAILED and records why.
func (s *Store) MarkFailed(ctx context.Context, key, note string) error {
	return s.transition(ctx, key, StatusPending, StatusFailed, "note", note)
}

func (s *Store) transition(ctx context.Context, key, expectedStatus, newStatus, attr, value string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"submission_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression:         awsString("SET #s = :new, #a = :v, updated_at = :ua"),
		ConditionExpression:      awsString("#s = :expected"),
		ExpressionAttributeNames: map[string]string{"#s": "status", "#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
			":v":        &types.AttributeValueMemberS{Value: value},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var sc *types.ConditionalCheckFailedException
		if errors.As(err, &sc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
