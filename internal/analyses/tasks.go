package analyses

import "sync"

// TaskStatus is the polling payload for one submitted document. It mirrors
// the persisted record's status but lives only for the process lifetime.
type TaskStatus struct {
	Status     string `json:"status"`
	AnalysisID string `json:"analysisId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// TaskCache tracks in-flight and recently finished tasks by task id.
type TaskCache interface {
	Set(taskID string, status TaskStatus)
	Get(taskID string) (TaskStatus, bool)
}

// MemoryTaskCache is a process-wide TaskCache safe for concurrent use.
type MemoryTaskCache struct {
	mu    sync.RWMutex
	tasks map[string]TaskStatus
}

// NewMemoryTaskCache constructs an empty MemoryTaskCache.
func NewMemoryTaskCache() *MemoryTaskCache {
	return &MemoryTaskCache{tasks: make(map[string]TaskStatus)}
}

func (c *MemoryTaskCache) Set(taskID string, status TaskStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks[taskID] = status
}

func (c *MemoryTaskCache) Get(taskID string) (TaskStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status, ok := c.tasks[taskID]
	return status, ok
}
