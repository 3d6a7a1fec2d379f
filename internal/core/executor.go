package core

// Executor decides where a submitted order action runs. Venues whose
// adapters must stay on the caller's goroutine use SyncExecutor; venues that
// prefer placement off the caller's goroutine use WorkerExecutor. Attempts
// serialize on the Manager mutex either way.
type Executor interface {
	Submit(task func())
}

type SyncExecutor struct{}

func (SyncExecutor) Submit(task func()) {
	task()
}

// WorkerExecutor runs tasks on a fixed pool of goroutines.
type WorkerExecutor struct {
	tasks chan func()
}

func NewWorkerExecutor(workers, backlog int) *WorkerExecutor {
	if workers < 1 {
		workers = 1
	}
	e := &WorkerExecutor{tasks: make(chan func(), backlog)}
	for i := 0; i < workers; i++ {
		go func() {
			for task := range e.tasks {
				task()
			}
		}()
	}
	return e
}

func (e *WorkerExecutor) Submit(task func()) {
	e.tasks <- task
}

// Close stops the workers once queued tasks drain.
func (e *WorkerExecutor) Close() {
	close(e.tasks)
}
