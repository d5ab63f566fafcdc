package gatherer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/models"
)

// Publisher delivers one encoded stream message.
type Publisher interface {
	Publish(ctx context.Context, msg []byte) error
}

const publishTimeout = 5 * time.Second

// Stream encodes events as api stream messages and hands them to a
// Publisher. Delivery errors are logged, never returned to the judge.
type Stream struct {
	jobID string
	pub   Publisher
	log   *slog.Logger
}

func NewStream(jobID string, pub Publisher, log *slog.Logger) *Stream {
	if log == nil {
		log = slog.Default()
	}
	return &Stream{jobID: jobID, pub: pub, log: log.With("job", jobID)}
}

func (s *Stream) JobID() string {
	return s.jobID
}

func (s *Stream) StartCompile(source string) {
	s.send(api.NewStartCompile(s.jobID, source))
}

func (s *Stream) FinishCompile(data *api.RuntimeData) {
	s.send(api.NewFinishCompile(s.jobID, TrimRuntimeData(data)))
}

func (s *Stream) CompileError(msg string) {
	s.send(api.NewCompileError(s.jobID, trim(msg)))
}

func (s *Stream) ReachTest(idx int, tc models.TestCase) {
	s.send(ReachTestMsg(s.jobID, idx, tc))
}

func (s *Stream) FinishTest(idx int, tc models.TestCase) {
	s.send(FinishTestMsg(s.jobID, idx, tc))
}

func (s *Stream) FinishBatch(stats models.Statistics) {
	s.send(api.NewFinishBatch(s.jobID, SummaryOf(stats)))
}

func (s *Stream) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("failed to marshal message", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.pub.Publish(ctx, b); err != nil {
		s.log.Warn("failed to publish message", "error", err)
	}
}
