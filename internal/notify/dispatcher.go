package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"compat-quiz-service/internal/domain"
)

// Dispatcher sends submissions in detached goroutines. Callers never see the outcome:
// failures are logged and dropped.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{notifier: notifier, timeout: timeout, log: log}
}

// Dispatch formats the completion and sends it in the background.
func (d *Dispatcher) Dispatch(quiz domain.Quiz, completion domain.Completion) {
	d.Send(NewSubmission(quiz, completion))
}

// Send delivers sub in the background.
func (d *Dispatcher) Send(sub Submission) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx := context.Background()
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}
		if err := d.notifier.Notify(ctx, sub); err != nil {
			d.log.Debug("quiz result submission failed",
				zap.String("participant", sub.ParticipantName),
				zap.Error(err))
			return
		}
		d.log.Debug("quiz result submitted", zap.String("participant", sub.ParticipantName))
	}()
}

// Wait blocks until every in-flight submission has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
