package task

import (
	"context"
	"fmt"
	"sync"
)

// Queue 固定容量的 FIFO 队列，元素为 task_id。
// 生产者非阻塞（满则立即返回 ErrCapacityExceeded），消费者只有一个 worker。
type Queue struct {
	mu     sync.Mutex
	items  chan string
	closed bool
}

// NewQueue 创建队列，capacity < 1 时按 1 处理
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{items: make(chan string, capacity)}
}

// TryEnqueue 入队，队列满或已关闭时立即失败
func (q *Queue) TryEnqueue(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.items <- id:
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrCapacityExceeded, cap(q.items))
	}
}

// Dequeue 阻塞直到取到元素、ctx 结束，或队列关闭且已排空
func (q *Queue) Dequeue(ctx context.Context) (string, error) {
	select {
	case id, ok := <-q.items:
		if !ok {
			return "", ErrQueueClosed
		}
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close 关闭队列：拒绝新的入队，已排队的元素仍可被取出
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.items)
}

// Closed 队列是否已关闭
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len 当前排队数量（不含正在执行的任务）
func (q *Queue) Len() int { return len(q.items) }

// Cap 队列容量
func (q *Queue) Cap() int { return cap(q.items) }
