package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// EnqueueSyncUser schedules an ad-hoc reconciliation for one user. Callers
// in interactive flows treat the sync as a best-effort background
// improvement; the request never waits on it.
func EnqueueSyncUser(asynqClient *asynq.Client, payload SyncUserPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeSyncUser, taskPayload)

	_, err = asynqClient.Enqueue(task)
	if err != nil {
		return err
	}

	log.Printf("Sync task scheduled: %+v", payload)
	return nil
}
