package ptero

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Batch defaults.
const (
	DefaultBatchConcurrency = 5
	DefaultBatchTimeout     = 30 * time.Second
)

// Static errors for err113 compliance.
var (
	ErrMissingOperation = errors.New("batch operation has no function")
)

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	ID       string
	Run      func(ctx context.Context) (interface{}, error)
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Data     interface{}
	Error    error
	Duration time.Duration
}

// BatchExecutor runs independent operations with bounded concurrency. Each
// operation gets its own timeout.
type BatchExecutor struct {
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	return &BatchExecutor{
		concurrency: concurrency,
		timeout:     DefaultBatchTimeout,
	}
}

// SetTimeout sets the timeout for batch operations.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs operations on at most concurrency workers. Results keep the
// order of operations. Operations not yet started when ctx ends are not run
// and fail with ctx.Err(). The error aggregates every failure and is nil when
// all succeeded.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))
	pending := make(chan int)

	var workers sync.WaitGroup

	for range min(b.concurrency, len(operations)) {
		workers.Add(1)

		go func() {
			defer workers.Done()

			for index := range pending {
				results[index] = b.run(ctx, operations[index])
			}
		}()
	}

	for index, operation := range operations {
		if !enqueue(ctx, pending, index) {
			results[index] = BatchResult{ID: operation.ID, Error: ctx.Err()}
			notify(operation, &results[index])
		}
	}

	close(pending)
	workers.Wait()

	var merr *multierror.Error

	for _, result := range results {
		if result.Error != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", result.ID, result.Error))
		}
	}

	return results, merr.ErrorOrNil()
}

func enqueue(ctx context.Context, pending chan<- int, index int) bool {
	if ctx.Err() != nil {
		return false
	}

	select {
	case pending <- index:
		return true
	case <-ctx.Done():
		return false
	}
}

// run executes one operation under its own timeout.
func (b *BatchExecutor) run(ctx context.Context, operation BatchOperation) BatchResult {
	result := BatchResult{ID: operation.ID}

	if operation.Run == nil {
		result.Error = ErrMissingOperation
		notify(operation, &result)

		return result
	}

	opCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	result.Data, result.Error = operation.Run(opCtx)
	result.Duration = time.Since(start)
	result.Success = result.Error == nil

	notify(operation, &result)

	return result
}

func notify(operation BatchOperation, result *BatchResult) {
	if operation.Callback != nil {
		operation.Callback(result)
	}
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddPowerSignal adds a power action on one server.
func (b *BatchBuilder) AddPowerSignal(servers ClientServersClient, identifier string, signal PowerSignal) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID: identifier,
		Run: func(ctx context.Context) (interface{}, error) {
			return nil, servers.SetPowerState(ctx, identifier, signal)
		},
	})
}

// AddCommand adds a console command on one server.
func (b *BatchBuilder) AddCommand(servers ClientServersClient, identifier, command string) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID: identifier,
		Run: func(ctx context.Context) (interface{}, error) {
			return nil, servers.SendCommand(ctx, identifier, command)
		},
	})
}

// AddSuspend adds a suspension of one server through the Application API.
func (b *BatchBuilder) AddSuspend(servers ServersClient, id int, suspend bool) *BatchBuilder {
	return b.AddOperation(BatchOperation{
		ID: fmt.Sprintf("server-%d", id),
		Run: func(ctx context.Context) (interface{}, error) {
			if suspend {
				return nil, servers.Suspend(ctx, id)
			}

			return nil, servers.Unsuspend(ctx, id)
		},
	})
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}
