package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Scheduler runs one cancellable task per name. The first run happens
// immediately; later ticks start a new run even if the previous one is
// still in flight.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]*scheduledTask
}

type scheduledTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	runs   sync.WaitGroup
}

// NewScheduler returns an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]*scheduledTask)}
}

// Schedule starts fn under name. A non-positive interval runs fn once.
// Scheduling an existing name replaces the previous task.
func (s *Scheduler) Schedule(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) error {
	if name == "" {
		return fmt.Errorf("dashboard: scheduled task name is required")
	}
	if fn == nil {
		return fmt.Errorf("dashboard: scheduled task %s has no function", name)
	}
	taskCtx, cancel := context.WithCancel(ctx)
	task := &scheduledTask{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	prev, replaced := s.tasks[name]
	s.tasks[name] = task
	go s.loop(taskCtx, name, task, interval, fn)
	s.mu.Unlock()

	if replaced {
		prev.cancel()
		<-prev.done
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context, name string, task *scheduledTask, interval time.Duration, fn func(context.Context)) {
	defer close(task.done)
	run := func() {
		task.runs.Add(1)
		go func() {
			defer task.runs.Done()
			fn(ctx)
		}()
	}

	run()
	if interval <= 0 {
		task.runs.Wait()
		s.forget(name, task)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			task.runs.Wait()
			return
		case <-ticker.C:
			run()
		}
	}
}

func (s *Scheduler) forget(name string, task *scheduledTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks[name] == task {
		delete(s.tasks, name)
	}
}

// Stop cancels the named task and waits for its in-flight runs.
func (s *Scheduler) Stop(name string) bool {
	s.mu.Lock()
	task, ok := s.tasks[name]
	if ok {
		delete(s.tasks, name)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	task.cancel()
	<-task.done
	return true
}

// StopAll cancels every task.
func (s *Scheduler) StopAll() {
	for _, name := range s.Names() {
		s.Stop(name)
	}
}

// Running reports whether a task is scheduled under name.
func (s *Scheduler) Running(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[name]
	return ok
}

// Names lists the scheduled task names.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
