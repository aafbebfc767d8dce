package driver

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ScenarioJob names a scenario file to load and run.
type ScenarioJob struct {
	Path string
	// Seq orders results for callers that print them in submission order
	Seq int
}

// ScenarioResult is the outcome of one job. Error is set when the file could
// not be loaded or its object graph could not be built.
type ScenarioResult struct {
	Path     string
	Seq      int
	Report   *Report
	Error    error
	WorkerID int
	Duration time.Duration
}

// PoolStats contains statistics about a scenario pool.
type PoolStats struct {
	TotalJobs     int           // Total jobs submitted
	ActiveJobs    int           // Currently active jobs
	CompletedJobs int           // Jobs whose scenario ran
	FailedJobs    int           // Jobs that could not run
	AverageTime   time.Duration // Average processing time per job
	TotalTime     time.Duration // Total time spent processing
	WorkerCount   int           // Number of workers
}

// Pool runs scenario files on a fixed set of workers. Every job gets a fresh
// realm, so jobs share no object state.
type Pool struct {
	numWorkers int

	jobQueue   chan *ScenarioJob
	resultChan chan *ScenarioResult

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started    int32 // atomic
	stopped    int32 // atomic
	activeJobs int32 // atomic

	stats      PoolStats
	statsMutex sync.RWMutex
}

// NewPool creates a pool with numWorkers workers, or one per CPU when
// numWorkers is not positive.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{numWorkers: numWorkers}
}

// Start launches the workers. Results are buffered for jobs jobs; submitting
// more than that requires draining Results concurrently.
func (p *Pool) Start(ctx context.Context, jobs int) error {
	if !atomic.CompareAndSwapInt32(&p.started, 0, 1) {
		return fmt.Errorf("scenario pool already started")
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.jobQueue = make(chan *ScenarioJob, jobs)
	p.resultChan = make(chan *ScenarioResult, jobs)
	p.stats = PoolStats{WorkerCount: p.numWorkers}

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
	debugPrintf("// [Driver] pool started with %d workers\n", p.numWorkers)
	return nil
}

// Submit queues a job.
func (p *Pool) Submit(job *ScenarioJob) error {
	if atomic.LoadInt32(&p.started) == 0 {
		return fmt.Errorf("scenario pool not started")
	}
	if atomic.LoadInt32(&p.stopped) == 1 {
		return fmt.Errorf("scenario pool stopped")
	}

	select {
	case p.jobQueue <- job:
		atomic.AddInt32(&p.activeJobs, 1)
		p.statsMutex.Lock()
		p.stats.TotalJobs++
		p.statsMutex.Unlock()
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Results returns the channel results are delivered on. It is closed by a
// successful Shutdown.
func (p *Pool) Results() <-chan *ScenarioResult {
	return p.resultChan
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for
// ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.stopped, 0, 1) {
		return fmt.Errorf("scenario pool already stopped")
	}
	close(p.jobQueue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		close(p.resultChan)
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

// HasActiveJobs reports whether submitted jobs have not finished yet.
func (p *Pool) HasActiveJobs() bool {
	return atomic.LoadInt32(&p.activeJobs) > 0
}

// Stats returns a snapshot of the pool statistics.
func (p *Pool) Stats() PoolStats {
	p.statsMutex.RLock()
	defer p.statsMutex.RUnlock()
	stats := p.stats
	stats.ActiveJobs = int(atomic.LoadInt32(&p.activeJobs))
	return stats
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := runJob(id, job)

			p.statsMutex.Lock()
			if result.Error == nil {
				p.stats.CompletedJobs++
			} else {
				p.stats.FailedJobs++
			}
			p.stats.TotalTime += result.Duration
			p.stats.AverageTime = p.stats.TotalTime / time.Duration(p.stats.CompletedJobs+p.stats.FailedJobs)
			p.statsMutex.Unlock()

			atomic.AddInt32(&p.activeJobs, -1)

			select {
			case p.resultChan <- result:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func runJob(worker int, job *ScenarioJob) *ScenarioResult {
	start := time.Now()
	result := &ScenarioResult{Path: job.Path, Seq: job.Seq, WorkerID: worker}
	defer func() { result.Duration = time.Since(start) }()

	s, err := LoadScenario(job.Path)
	if err != nil {
		result.Error = err
		return result
	}
	rep, err := Run(s)
	if err != nil {
		result.Error = fmt.Errorf("%s: %w", job.Path, err)
		return result
	}
	result.Report = rep
	return result
}

// RunFiles runs every file on a pool and returns the results in the order
// the files were given.
func RunFiles(ctx context.Context, paths []string, workers int) ([]*ScenarioResult, error) {
	pool := NewPool(workers)
	if err := pool.Start(ctx, len(paths)); err != nil {
		return nil, err
	}
	for i, path := range paths {
		if err := pool.Submit(&ScenarioJob{Path: path, Seq: i}); err != nil {
			pool.Shutdown(ctx)
			return nil, err
		}
	}
	if err := pool.Shutdown(ctx); err != nil {
		return nil, err
	}

	results := make([]*ScenarioResult, len(paths))
	for res := range pool.Results() {
		results[res.Seq] = res
	}
	return results, nil
}
