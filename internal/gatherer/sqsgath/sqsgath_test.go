package sqsgath

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m")}, nil
}

func TestSendsMessagesToQueue(t *testing.T) {
	client := &fakeSQS{}
	g := New(client, "job-1", "https://sqs.example/queue", nil)

	tc := models.NewTestCase("1\n", "1\n")
	tc.Status = models.Accepted
	g.ReachTest(0, tc)
	g.FinishTest(0, tc)
	g.FinishBatch(models.Statistics{Total: 1, Passed: 1})

	require.Len(t, client.inputs, 3)
	for _, in := range client.inputs {
		assert.Equal(t, "https://sqs.example/queue", aws.ToString(in.QueueUrl))
	}

	var fin api.FinishTest
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[1].MessageBody)), &fin))
	assert.Equal(t, api.FinishTestMsg, fin.MsgType)
	assert.Equal(t, "job-1", fin.JobID)
	assert.Equal(t, "AC", fin.Verdict)
	assert.Equal(t, tc.ID.String(), fin.TestID)
}

func TestSendFailureIsNotFatal(t *testing.T) {
	client := &fakeSQS{err: errors.New("throttled")}
	g := New(client, "job-2", "q", nil)

	assert.NotPanics(t, func() { g.CompileError("boom") })
	assert.Len(t, client.inputs, 1)
}
