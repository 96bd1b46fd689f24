package conversation

import (
	"context"
	"sync"

	"github.com/AmlanDas-dot/Innovastra/pkg/memory"
)

// AsyncController provides asynchronous conversation operations.
//
// It wraps the synchronous Controller and executes generation-bound
// operations in separate goroutines, so a UI event loop can keep accepting
// input while a reply is in flight. The controller's own guards decide what
// happens to overlapping calls: the overlapped one is dropped with ErrBusy,
// never queued.
//
// All async methods return channels that receive exactly one result. The
// wrapper tracks its goroutines and provides Wait() to drain them.
//
// Example:
//
//	ctl, _ := conversation.NewController(config)
//	async := conversation.NewAsyncController(ctl)
//	defer async.Close()
//
//	replyChan := async.SubmitAsync(ctx, "I'm weighing a job offer in Berlin")
//	// ... keep handling UI events ...
//	if err := <-replyChan; err != nil {
//	    log.Println(err)
//	}
type AsyncController struct {
	*Controller
	wg sync.WaitGroup
}

// NewAsyncController wraps a Controller for asynchronous use.
func NewAsyncController(ctl *Controller) *AsyncController {
	return &AsyncController{
		Controller: ctl,
	}
}

// SubmitAsync feeds user text into the dialogue asynchronously.
//
// The operation executes in a separate goroutine and reports via the
// returned channel.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - text: The user's free-text input
//
// Returns:
//   - <-chan error: Channel that receives nil or a guard sentinel
func (ac *AsyncController) SubmitAsync(ctx context.Context, text string) <-chan error {
	errChan := make(chan error, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		errChan <- ac.Submit(ctx, text)
		close(errChan)
	}()

	return errChan
}

// SaveAsync persists the draft asynchronously.
//
// The operation executes in a separate goroutine and reports via the
// returned channel.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//
// Returns:
//   - <-chan *SaveResult: Channel that receives the stored record and error
func (ac *AsyncController) SaveAsync(ctx context.Context) <-chan *SaveResult {
	resultChan := make(chan *SaveResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		rec, err := ac.Save(ctx)
		resultChan <- &SaveResult{
			Memory: rec,
			Error:  err,
		}
		close(resultChan)
	}()

	return resultChan
}

// Wait waits for all asynchronous operations to complete.
//
// This method blocks until all goroutines started by async methods have
// finished. It should be called before program exit to ensure all
// operations complete.
func (ac *AsyncController) Wait() {
	ac.wg.Wait()
}

// Close waits for all asynchronous operations to complete, then closes the
// underlying controller.
func (ac *AsyncController) Close() error {
	ac.Wait()
	return ac.Controller.Close()
}

// SaveResult contains the result of an asynchronous save.
type SaveResult struct {
	// Memory is the stored record (nil if an error occurred).
	Memory *memory.Memory

	// Error is the error returned by the operation (nil on success).
	Error error
}
