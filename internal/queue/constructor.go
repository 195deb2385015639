package queue

import (
	"github.com/maheshrc27/scratchy/internal/service"
)

type Queue struct {
	sync service.SyncService
}

func NewQueue(sync service.SyncService) *Queue {
	return &Queue{
		sync: sync,
	}
}

const TaskTypeSyncUser = "sync:user"

type SyncUserPayload struct {
	UserID int64 `json:"user_id"`
}
