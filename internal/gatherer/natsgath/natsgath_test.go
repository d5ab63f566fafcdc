package natsgath

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a running server, e.g. CPKIT_TEST_NATS_URL=nats://127.0.0.1:4222.
func TestPublishesToSubject(t *testing.T) {
	url := os.Getenv("CPKIT_TEST_NATS_URL")
	if url == "" {
		t.Skip("CPKIT_TEST_NATS_URL is not set")
	}
	nc, err := Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync("cpkit.test.progress")
	require.NoError(t, err)

	g := New(nc, "job-nats", "cpkit.test.progress", nil)
	g.StartCompile("main.cpp")
	g.FinishBatch(models.Statistics{Total: 2, Passed: 1, WrongAnswer: 1})
	require.NoError(t, Flush(context.Background(), nc))

	msgs := make([]*nats.Msg, 0, 2)
	for range 2 {
		m, err := sub.NextMsg(2 * time.Second)
		require.NoError(t, err)
		msgs = append(msgs, m)
	}

	var start api.StartCompile
	require.NoError(t, json.Unmarshal(msgs[0].Data, &start))
	assert.Equal(t, api.StartCompileMsg, start.MsgType)
	assert.Equal(t, "main.cpp", start.Source)

	var fin api.FinishBatch
	require.NoError(t, json.Unmarshal(msgs[1].Data, &fin))
	assert.Equal(t, 2, fin.Summary.Total)
	assert.InDelta(t, 50.0, fin.Summary.SuccessRate, 0.001)
}
