package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-bulk-hamper-orders/internal/aws"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/config"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/logging"
	"github.com/imrishuroy/go-bulk-hamper-orders/internal/submissions"
)

const localBody = `{"order_id":"local-order-1","draft_id":"local-draft-1","payee_email":"payer@example.com","payment_mode":"CASH","amount":"42.50","recipients":2}`

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel)
	ctx := context.Background()

	clients, err := aws.NewAWSClients(ctx, aws.Options{
		Region:           cfg.AWS.Region,
		EndpointOverride: cfg.AWS.EndpointOverride,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init aws clients")
	}

	var subs SubmissionStore
	if cfg.AWS.SubmissionsTable != "" {
		subs = submissions.NewStore(clients.DynamoDB, cfg.AWS.SubmissionsTable)
	}
	p := NewProcessor(subs, aws.NewMetrics(clients.CloudWatch, cfg.AWS.MetricsNamespace), log)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if cfg.Server.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = localBody
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		}
		resp, err := p.Handle(ctx, event)
		if err != nil {
			log.WithError(err).Fatal("local handler error")
		}
		if len(resp.BatchItemFailures) > 0 {
			log.WithField("failures", resp.BatchItemFailures).Fatal("local message failed")
		}
		return
	}

	lambda.Start(p.Handle)
}
