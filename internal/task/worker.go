package task

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/azhengyongqin/vision-taskhub/internal/logger"
	"github.com/azhengyongqin/vision-taskhub/internal/metrics"
	"github.com/azhengyongqin/vision-taskhub/internal/model"
)

// ProgressFunc 批量任务每完成一个子项回调一次
type ProgressFunc func(item string)

// Executor 执行具体推理任务
type Executor interface {
	Execute(ctx context.Context, p Payload, progress ProgressFunc) (any, error)
}

// Outcome 任务结束时的执行摘要
type Outcome struct {
	TaskID     string
	Kind       model.TaskKind
	Status     model.TaskStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// OutcomeRecorder 任务结束后的旁路记录（失败不影响任务状态）
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, o Outcome) error
}

// Worker 单消费者：串行取出并执行任务，任务之间互不影响
type Worker struct {
	store    *Store
	queue    *Queue
	exec     Executor
	recorder OutcomeRecorder

	recordTimeout time.Duration

	running atomic.Bool
	busy    atomic.Bool
	done    chan struct{}
}

// WorkerOption worker 可选配置
type WorkerOption func(*Worker)

// DefaultRecordTimeout 单次执行历史写入的默认超时
const DefaultRecordTimeout = 3 * time.Second

// WithOutcomeRecorder 设置执行结果记录器
func WithOutcomeRecorder(r OutcomeRecorder) WorkerOption {
	return func(w *Worker) { w.recorder = r }
}

// WithRecordTimeout 设置执行历史写入超时，<=0 使用默认值
func WithRecordTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.recordTimeout = d
		}
	}
}

func NewWorker(store *Store, queue *Queue, exec Executor, opts ...WorkerOption) *Worker {
	w := &Worker{
		store: store,
		queue: queue,
		exec:  exec,
		done:  make(chan struct{}),

		recordTimeout: DefaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start 在后台 goroutine 中运行 worker
func (w *Worker) Start(ctx context.Context) {
	go w.Run(ctx)
}

// Run 消费循环。队列关闭并排空后返回；ctx 结束时不再取新任务。
// 只允许运行一个实例，重复调用直接返回。
func (w *Worker) Run(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		return
	}
	defer close(w.done)

	log := logger.WithComponent("worker")
	log.Info().Int("queue_capacity", w.queue.Cap()).Msg("worker 已启动")

	for {
		id, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) {
				log.Info().Msg("队列已关闭且已排空，worker 退出")
			} else {
				log.Warn().Err(err).Int("abandoned", w.queue.Len()).Msg("worker 被取消")
			}
			return
		}
		metrics.UpdateQueueDepth(w.queue.Len())
		w.process(ctx, id)
	}
}

// Done worker 退出后关闭
func (w *Worker) Done() <-chan struct{} { return w.done }

// Alive 已启动且尚未退出
func (w *Worker) Alive() bool {
	if !w.running.Load() {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Busy 是否正在执行任务
func (w *Worker) Busy() bool { return w.busy.Load() }

func (w *Worker) process(ctx context.Context, id string) {
	log := logger.WithTaskID(id)

	p, err := w.store.Claim(id)
	if err != nil {
		log.Error().Err(err).Msg("无法领取任务")
		metrics.RecordError("worker", "claim")
		return
	}
	kind := p.Kind()

	w.busy.Store(true)
	metrics.SetWorkerBusy(true)
	defer func() {
		w.busy.Store(false)
		metrics.SetWorkerBusy(false)
	}()

	started := time.Now()
	log.Info().Str("kind", string(kind)).Msg("开始执行任务")

	// 正在执行的推理不随关闭信号取消
	execCtx := context.WithoutCancel(ctx)
	result, execErr := w.execute(execCtx, id, p)

	outcome := Outcome{
		TaskID:     id,
		Kind:       kind,
		Status:     model.TaskStatusDone,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	duration := outcome.FinishedAt.Sub(started)

	if execErr != nil {
		outcome.Status = model.TaskStatusError
		outcome.Error = execErr.Error()
		if err := w.store.Fail(id, outcome.Error); err != nil {
			log.Error().Err(err).Msg("写入失败状态出错")
		}
		log.Error().
			Str("kind", string(kind)).
			Dur("duration", duration).
			Err(execErr).
			Msg("任务执行失败")
	} else {
		if err := w.store.Complete(id, result); err != nil {
			log.Error().Err(err).Msg("写入完成状态出错")
		}
		log.Info().
			Str("kind", string(kind)).
			Dur("duration", duration).
			Msg("任务执行完成")
	}
	metrics.RecordTaskFinished(string(kind), string(outcome.Status), duration.Seconds())

	if w.recorder != nil {
		w.record(execCtx, outcome)
	}
}

// record 写入执行历史，超时即放弃，不阻塞后续任务
func (w *Worker) record(ctx context.Context, o Outcome) {
	ctx, cancel := context.WithTimeout(ctx, w.recordTimeout)
	defer cancel()

	if err := w.recorder.RecordOutcome(ctx, o); err != nil {
		log := logger.WithTaskID(o.TaskID)
		log.Warn().Err(err).Dur("timeout", w.recordTimeout).Msg("记录执行历史失败")
		metrics.RecordError("worker", "record_outcome")
	}
}

// execute 调用执行器，panic 转换为任务失败
func (w *Worker) execute(ctx context.Context, id string, p Payload) (result any, err error) {
	log := logger.WithTaskID(id)
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("任务执行 panic")
			metrics.RecordError("worker", "panic")
			result = nil
			err = fmt.Errorf("panic during execution: %v", r)
		}
	}()

	return w.exec.Execute(ctx, p, func(item string) {
		if err := w.store.MarkItemDone(id, item); err != nil {
			log.Warn().Err(err).Str("item", item).Msg("更新进度失败")
		}
	})
}
