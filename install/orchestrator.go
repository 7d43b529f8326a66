package install

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"modpack-server-installer/modpacks"

	"go.uber.org/zap"
)

// Progress counts completed downloads of one run and prints a line for each.
type Progress struct {
	total int
	done  atomic.Int64
	out   io.Writer
	mu    sync.Mutex
}

// NewProgress returns a counter for total units that prints to out.
func NewProgress(total int, out io.Writer) *Progress {
	if out == nil {
		out = os.Stdout
	}
	return &Progress{total: total, out: out}
}

// Done records one successful unit and returns the new count.
func (p *Progress) Done(name, path string, size int64) int64 {
	n := p.done.Add(1)
	p.mu.Lock()
	fmt.Fprintf(p.out, "[%d/%d] Downloaded '%s' to '%s' [%d bytes]\n", n, p.total, name, path, size)
	p.mu.Unlock()
	return n
}

// Count returns the number of recorded units.
func (p *Progress) Count() int64 {
	return p.done.Load()
}

// FileResult is the outcome of one unit of work.
type FileResult struct {
	File    modpacks.FileDescriptor
	Path    string
	Bytes   int64
	Skipped bool
	Err     error
}

// Summary aggregates a batch of downloads.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int // successful units that kept an existing file
	Failures  []error
	Results   []FileResult
}

// Orchestrator downloads the server files of a version on a worker pool.
type Orchestrator struct {
	hc        modpacks.Doer
	workers   int
	overwrite bool
	verify    bool
	log       *zap.SugaredLogger
	// Out receives progress lines; stdout when nil.
	Out io.Writer
}

// NewOrchestrator returns an Orchestrator. workers <= 0 starts one goroutine
// per file.
func NewOrchestrator(hc modpacks.Doer, workers int, overwrite, verify bool, log *zap.SugaredLogger) *Orchestrator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Orchestrator{hc: hc, workers: workers, overwrite: overwrite, verify: verify, log: log}
}

// InstallFiles downloads every non client-only file below root and waits for
// all of them. A failed file never stops its siblings; failures are reported
// in the Summary.
func (o *Orchestrator) InstallFiles(ctx context.Context, files []modpacks.FileDescriptor, root string) Summary {
	units := make([]modpacks.FileDescriptor, 0, len(files))
	for _, f := range files {
		if !f.ClientOnly {
			units = append(units, f)
		}
	}

	results := make([]FileResult, len(units))
	progress := NewProgress(len(units), o.Out)

	workers := o.workers
	if workers <= 0 || workers > len(units) {
		workers = len(units)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = o.installOne(ctx, units[i], root, progress)
			}
		}()
	}
	for i := range units {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	s := Summary{Attempted: len(units), Results: results}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			s.Failures = append(s.Failures, r.Err)
			continue
		}
		s.Succeeded++
		if r.Skipped {
			s.Skipped++
		}
	}
	return s
}

func (o *Orchestrator) installOne(ctx context.Context, f modpacks.FileDescriptor, root string, progress *Progress) FileResult {
	unitLogger := o.log.With(zap.String("file", f.Name), zap.Int64("file_id", f.ID))
	res := FileResult{File: f}

	dest, err := f.Destination(root)
	if err != nil {
		res.Err = &modpacks.TransferError{File: f.Name, Cause: err}
		unitLogger.Errorw("Rejected file destination", zap.Error(err))
		return res
	}
	res.Path = dest

	if err := f.Prepare(dest); err != nil {
		res.Err = &modpacks.TransferError{File: f.Name, Cause: err}
		unitLogger.Errorw("Failed to prepare file", zap.Error(err))
		return res
	}

	r, err := f.Download(ctx, o.hc, dest, o.overwrite, o.verify)
	if err != nil {
		res.Err = err
		unitLogger.Errorw("Failed to download file", zap.String("url", f.URL), zap.Error(err))
		return res
	}
	res.Bytes = r.Bytes
	res.Skipped = r.Skipped

	if r.Skipped {
		unitLogger.Debugw("File already present, skipped", zap.String("path", dest))
	}
	progress.Done(f.Name, dest, r.Bytes)
	return res
}
