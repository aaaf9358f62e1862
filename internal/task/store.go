package task

import (
	"fmt"
	"sync"
	"time"

	"github.com/azhengyongqin/vision-taskhub/internal/model"
)

// record 任务记录（只在 Store 内部可变）
type record struct {
	id          string
	kind        model.TaskKind
	status      model.TaskStatus
	payload     Payload
	result      any
	errorDetail string
	frames      map[string]string
	createdAt   time.Time
	startedAt   time.Time
	finishedAt  time.Time
}

// View 对外可见的任务快照。
// 非终态只暴露 task_id/status（以及批量任务的子项进度），
// 终态才包含 result 或 error_detail。
type View struct {
	TaskID      string            `json:"task_id"`
	Status      model.TaskStatus  `json:"status"`
	Kind        model.TaskKind    `json:"kind,omitempty"`
	Frames      map[string]string `json:"frames,omitempty"`
	Result      any               `json:"result,omitempty"`
	ErrorDetail string            `json:"error_detail,omitempty"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
}

// Store 进程内任务记录表，HTTP 读与 worker 写并发安全
type Store struct {
	mu    sync.RWMutex
	items map[string]*record // key: task_id
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		items: map[string]*record{},
		now:   time.Now,
	}
}

// Create 以 queued 状态创建记录
func (s *Store) Create(id string, p Payload) error {
	if id == "" {
		return fmt.Errorf("%w: empty task id", ErrValidation)
	}
	if p == nil {
		return fmt.Errorf("%w: nil payload", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; ok {
		return fmt.Errorf("task %s already exists", id)
	}
	s.items[id] = &record{
		id:        id,
		kind:      p.Kind(),
		status:    model.TaskStatusQueued,
		payload:   p,
		frames:    map[string]string{},
		createdAt: s.now(),
	}
	return nil
}

// Remove 删除记录（准入失败时回滚用）
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Claim 将任务置为 processing 并移交 payload，记录中不再保留 payload
func (s *Store) Claim(id string) (Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.transitionLocked(id, model.TaskStatusProcessing)
	if err != nil {
		return nil, err
	}
	r.startedAt = s.now()
	p := r.payload
	r.payload = nil
	return p, nil
}

// MarkItemDone 标记批量任务中某个子项已完成
func (s *Store) MarkItemDone(id, item string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if r.status != model.TaskStatusProcessing {
		return fmt.Errorf("%w: progress update on %s task", ErrInvalidTransition, r.status)
	}
	r.frames[item] = model.ItemDone
	return nil
}

// Complete processing -> done
func (s *Store) Complete(id string, result any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.transitionLocked(id, model.TaskStatusDone)
	if err != nil {
		return err
	}
	r.result = result
	r.finishedAt = s.now()
	return nil
}

// Fail processing -> error
func (s *Store) Fail(id, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.transitionLocked(id, model.TaskStatusError)
	if err != nil {
		return err
	}
	r.errorDetail = detail
	r.finishedAt = s.now()
	return nil
}

func (s *Store) transitionLocked(id string, next model.TaskStatus) (*record, error) {
	r, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !r.status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.status, next)
	}
	r.status = next
	return r, nil
}

// Status 返回任务快照，只读不改状态
func (s *Store) Status(id string) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	v := View{
		TaskID: r.id,
		Status: r.status,
	}
	if len(r.frames) > 0 {
		v.Frames = make(map[string]string, len(r.frames))
		for k, val := range r.frames {
			v.Frames[k] = val
		}
	}
	if !r.status.Terminal() {
		return v, nil
	}

	v.Kind = r.kind
	v.Result = r.result
	v.ErrorDetail = r.errorDetail
	v.CreatedAt = timePtr(r.createdAt)
	v.StartedAt = timePtr(r.startedAt)
	v.FinishedAt = timePtr(r.finishedAt)
	return v, nil
}

// Counts 按状态统计记录数
func (s *Store) Counts() map[model.TaskStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[model.TaskStatus]int{
		model.TaskStatusQueued:     0,
		model.TaskStatusProcessing: 0,
		model.TaskStatusDone:       0,
		model.TaskStatusError:      0,
	}
	for _, r := range s.items {
		out[r.status]++
	}
	return out
}

// Len 记录总数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// EvictFinishedBefore 清理在 before 之前已结束的终态记录，返回清理数量。
// queued/processing 记录永远不会被清理。
func (s *Store) EvictFinishedBefore(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, r := range s.items {
		if r.status.Terminal() && r.finishedAt.Before(before) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
