package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leeforge/picture/logging"
	"github.com/leeforge/picture/metrics"
	"github.com/leeforge/picture/picture"
)

// Generator is the part of picture.Generator the processor needs.
type Generator interface {
	Generate(ctx context.Context, img picture.Image, cfg picture.PictureConfiguration, opts picture.ResizeOptions) (*picture.Picture, error)
}

// Job 生成任务
type Job struct {
	ID      int
	Name    string
	Source  picture.Image
	Config  picture.PictureConfiguration
	Options picture.ResizeOptions
	// Callback receives the result on the worker goroutine.
	Callback func(result Result)
}

// Result 任务结果
type Result struct {
	JobID    int
	Name     string
	Picture  *picture.Picture
	Err      error
	Duration time.Duration
}

// AsyncProcessor generates pictures on a fixed number of workers.
type AsyncProcessor struct {
	workerCount int
	jobQueue    chan Job
	generator   Generator
	logger      logging.Logger
	metrics     *metrics.Collector
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

type Option func(*AsyncProcessor)

func WithLogger(l logging.Logger) Option {
	return func(p *AsyncProcessor) { p.logger = l }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(p *AsyncProcessor) { p.metrics = c }
}

// WithQueueSize sets how many jobs may wait for a worker.
func WithQueueSize(n int) Option {
	return func(p *AsyncProcessor) { p.jobQueue = make(chan Job, n) }
}

// NewAsyncProcessor 创建异步处理器
func NewAsyncProcessor(ctx context.Context, workerCount int, generator Generator, opts ...Option) *AsyncProcessor {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	p := &AsyncProcessor{
		workerCount: workerCount,
		jobQueue:    make(chan Job, 100),
		generator:   generator,
		logger:      logging.NewNop(),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start 启动处理器
func (p *AsyncProcessor) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// worker 工作协程
func (p *AsyncProcessor) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.processJob(id, job)
		}
	}
}

// processJob 处理单个任务
func (p *AsyncProcessor) processJob(worker int, job Job) {
	start := time.Now()
	ctx := logging.SetPicture(p.ctx, job.Name)

	pic, err := p.generator.Generate(ctx, job.Source, job.Config, job.Options)
	result := Result{
		JobID:    job.ID,
		Name:     job.Name,
		Picture:  pic,
		Err:      err,
		Duration: time.Since(start),
	}

	if p.metrics != nil {
		p.metrics.RecordGenerate(job.Name, result.Duration, err)
	}

	logger := logging.WithContext(p.logger, ctx).With(
		zap.Int("worker", worker),
		zap.Int("job", job.ID),
		zap.String("source", job.Source.URL()),
		zap.Duration("duration", result.Duration),
	)
	if err != nil {
		logger.Error("picture generation failed", zap.Error(err))
	} else {
		logger.Debug("picture generated")
	}

	if job.Callback != nil {
		job.Callback(result)
	}
}

// Submit queues a job, blocking while the queue is full. It fails once the
// processor is closed or stopped.
func (p *AsyncProcessor) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("processor is closed")
	}

	select {
	case <-p.ctx.Done():
		return fmt.Errorf("processor is shutting down")
	default:
	}

	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("processor is shutting down")
	}
}

// Close stops accepting jobs and waits until the queued ones are done.
func (p *AsyncProcessor) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobQueue)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

// Stop drops queued jobs; running ones see a cancelled
// context. It returns an error when the workers do not finish in time.
func (p *AsyncProcessor) Stop(timeout time.Duration) error {
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for workers to stop")
	}
}

// Run generates all jobs on workerCount workers and returns the results in
// job order. Jobs left over when ctx ends report the context error.
func Run(ctx context.Context, workerCount int, generator Generator, jobs []Job, opts ...Option) []Result {
	results := make([]Result, len(jobs))
	done := make([]bool, len(jobs))
	p := NewAsyncProcessor(ctx, workerCount, generator, opts...)
	p.Start()

	for i, job := range jobs {
		job.ID = i
		callback := job.Callback
		job.Callback = func(r Result) {
			results[r.JobID] = r
			done[r.JobID] = true
			if callback != nil {
				callback(r)
			}
		}
		if err := p.Submit(job); err != nil {
			break
		}
	}

	p.Close()

	for i, job := range jobs {
		if done[i] {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("job %d was not processed", i)
		}
		results[i] = Result{JobID: i, Name: job.Name, Err: err}
	}
	return results
}
