package monitoring

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// A ProgressBar counts the items of a long run, such as the transfers of a
// scenario, that are in flight and that have finished.
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress marks amount items as started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// MoveInProgressToFinished marks amount started items as finished.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	if amount > b.InProgress {
		log.Panicf("progress bar %s: finishing %d items with %d in progress",
			b.Name, amount, b.InProgress)
	}

	b.InProgress -= amount
	b.Finished += amount
}

type progressBarJSON struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// MarshalJSON encodes the counters as one consistent snapshot.
func (b *ProgressBar) MarshalJSON() ([]byte, error) {
	b.Lock()
	snapshot := progressBarJSON{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
	b.Unlock()

	return json.Marshal(snapshot)
}
