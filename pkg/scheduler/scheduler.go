package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/code-100-precent/LingMeme/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultTaskTimeout bounds one run of a task
const DefaultTaskTimeout = time.Minute

// Task represents a scheduled task
type Task struct {
	ID       string                          `json:"id"`
	Name     string                          `json:"name"`
	Schedule string                          `json:"schedule"` // cron 表达式，支持 5 段、6 段与 @every
	Run      func(ctx context.Context) error `json:"-"`
	Timeout  time.Duration                   `json:"-"`
	Enabled  bool                            `json:"enabled"`

	mu        sync.RWMutex
	entryID   cron.EntryID
	lastRun   time.Time
	lastError string
	runs      int64
}

// TaskStatus is a point-in-time view of a task
type TaskStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Enabled   bool      `json:"enabled"`
	LastRun   time.Time `json:"lastRun,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	Runs      int64     `json:"runs"`
	NextRun   time.Time `json:"nextRun,omitempty"`
}

// Scheduler runs housekeeping tasks on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	tasks  map[string]*Task
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// 秒字段可选
var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// AddTask adds a task to the scheduler
func (s *Scheduler) AddTask(task *Task) error {
	if task.ID == "" {
		return fmt.Errorf("task ID is required")
	}
	if task.Schedule == "" {
		return fmt.Errorf("task schedule is required")
	}
	if task.Run == nil {
		return fmt.Errorf("task handler is required")
	}
	if _, err := parser.Parse(task.Schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("task already exists: %s", task.ID)
	}
	if task.Enabled {
		if err := s.schedule(task); err != nil {
			return err
		}
	}
	s.tasks[task.ID] = task

	logger.Info("task added",
		zap.String("taskID", task.ID),
		zap.String("name", task.Name),
		zap.String("schedule", task.Schedule),
		zap.Bool("enabled", task.Enabled))
	return nil
}

func (s *Scheduler) schedule(task *Task) error {
	id, err := s.cron.AddFunc(task.Schedule, func() { s.execute(task) })
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	task.mu.Lock()
	task.entryID = id
	task.mu.Unlock()
	return nil
}

// RemoveTask removes a task from the scheduler
func (s *Scheduler) RemoveTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task not found: %s", id)
	}
	task.mu.Lock()
	if task.entryID != 0 {
		s.cron.Remove(task.entryID)
		task.entryID = 0
	}
	task.mu.Unlock()
	delete(s.tasks, id)

	logger.Info("task removed", zap.String("taskID", id))
	return nil
}

func (s *Scheduler) getTask(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task not found: %s", id)
	}
	return task, nil
}

// EnableTask enables a task
func (s *Scheduler) EnableTask(id string) error {
	task, err := s.getTask(id)
	if err != nil {
		return err
	}
	task.mu.Lock()
	was := task.Enabled
	task.Enabled = true
	task.mu.Unlock()
	if was {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule(task)
}

// DisableTask disables a task
func (s *Scheduler) DisableTask(id string) error {
	task, err := s.getTask(id)
	if err != nil {
		return err
	}
	task.mu.Lock()
	task.Enabled = false
	if task.entryID != 0 {
		s.cron.Remove(task.entryID)
		task.entryID = 0
	}
	task.mu.Unlock()
	return nil
}

// RunNow executes a task synchronously, regardless of its schedule
func (s *Scheduler) RunNow(id string) error {
	task, err := s.getTask(id)
	if err != nil {
		return err
	}
	return s.execute(task)
}

// Status returns the status of a task
func (s *Scheduler) Status(id string) (TaskStatus, error) {
	task, err := s.getTask(id)
	if err != nil {
		return TaskStatus{}, err
	}
	return s.status(task), nil
}

// ListTasks returns the status of all tasks
func (s *Scheduler) ListTasks() []TaskStatus {
	s.mu.RLock()
	tasks := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.RUnlock()

	out := make([]TaskStatus, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.status(t))
	}
	return out
}

func (s *Scheduler) status(task *Task) TaskStatus {
	task.mu.RLock()
	defer task.mu.RUnlock()
	st := TaskStatus{
		ID:        task.ID,
		Name:      task.Name,
		Schedule:  task.Schedule,
		Enabled:   task.Enabled,
		LastRun:   task.lastRun,
		LastError: task.lastError,
		Runs:      task.runs,
	}
	if task.Enabled {
		if sched, err := parser.Parse(task.Schedule); err == nil {
			st.NextRun = sched.Next(time.Now())
		}
	}
	return st
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("scheduler started", zap.Int("tasks", len(s.ListTasks())))
}

// Stop stops the scheduler and waits for running tasks
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	logger.Info("scheduler stopped")
}

// execute executes a task
func (s *Scheduler) execute(task *Task) error {
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	start := time.Now()
	err := task.Run(ctx)
	duration := time.Since(start)

	task.mu.Lock()
	task.lastRun = start
	task.runs++
	task.lastError = ""
	if err != nil {
		task.lastError = err.Error()
	}
	task.mu.Unlock()

	if err != nil {
		logger.Error("task execution failed",
			zap.String("taskID", task.ID),
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}
	logger.Debug("task executed",
		zap.String("taskID", task.ID),
		zap.Duration("duration", duration))
	return nil
}
