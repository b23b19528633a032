package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted for created bulk orders.
const (
	MetricBulkOrdersCreated   = "BulkOrdersCreated"
	MetricBulkOrderAmount     = "BulkOrderAmount"
	MetricBulkOrderRecipients = "BulkOrderRecipients"
)

// Metrics publishes bulk order metrics to CloudWatch.
type Metrics struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{
		CloudWatch: cw,
		Namespace:  namespace,
		nowFunc:    time.Now,
	}
}

// RecordBulkOrderCreated emits the count, amount and recipient count of one
// created bulk order, dimensioned by payment mode.
func (m *Metrics) RecordBulkOrderCreated(ctx context.Context, paymentMode string, amount float64, recipients int) error {
	now := m.nowFunc()
	dims := []cwtypes.Dimension{{
		Name:  sdkaws.String("PaymentMode"),
		Value: sdkaws.String(paymentMode),
	}}

	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(MetricBulkOrdersCreated),
				Dimensions: dims,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(1),
			},
			{
				MetricName: sdkaws.String(MetricBulkOrderAmount),
				Dimensions: dims,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitNone,
				Value:      sdkaws.Float64(amount),
			},
			{
				MetricName: sdkaws.String(MetricBulkOrderRecipients),
				Dimensions: dims,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(float64(recipients)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
