package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/scratchy/internal/service"
)

func (j *Queue) HandleSyncUserTask(ctx context.Context, task *asynq.Task) error {
	var payload SyncUserPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	_, err := j.sync.Reconcile(ctx, payload.UserID)
	if err != nil {
		slog.Info(err.Error())

		// Missing consent or zero upstream profiles will not fix themselves
		// by retrying; only transient failures go back to the queue.
		if errors.Is(err, service.ErrUserNotAuthorized) || errors.Is(err, service.ErrNoAccountsFound) {
			return nil
		}
		return err
	}
	return nil
}
