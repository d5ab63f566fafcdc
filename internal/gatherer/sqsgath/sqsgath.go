// Package sqsgath sends judge progress as JSON messages to an AWS SQS queue.
package sqsgath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/cpkit/internal/gatherer"
)

const DefaultRegion = "eu-central-1"

// SendMessageAPI is the part of the SQS client the gatherer needs.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// NewClient loads the default AWS configuration for region.
func NewClient(ctx context.Context, region string) (*sqs.Client, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

// New creates a gatherer sending every message for jobID to queueURL.
func New(client SendMessageAPI, jobID string, queueURL string, log *slog.Logger) *gatherer.Stream {
	return gatherer.NewStream(jobID, &publisher{client: client, queueURL: queueURL}, log)
}

type publisher struct {
	client   SendMessageAPI
	queueURL string
}

func (p *publisher) Publish(ctx context.Context, msg []byte) error {
	_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(msg)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", p.queueURL, err)
	}
	return nil
}
