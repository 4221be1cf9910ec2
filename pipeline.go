package lvimg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bodgit/lvimg/cache"
)

var errDuplicate = errors.New("duplicate icon code")

type Failure struct {
	File string
	Err  error
}

// Report summarises a batch conversion. File names are relative to the
// input directory and sorted.
type Report struct {
	Converted []string
	Skipped   []string
	Failed    []Failure
	// Missing lists the weather icon codes with no output file after the
	// run.
	Missing []string
}

func (r *Report) Total() int {
	return len(r.Converted) + len(r.Skipped) + len(r.Failed)
}

// Empty reports whether no source images were found at all.
func (r *Report) Empty() bool {
	return r.Total() == 0
}

type job struct {
	src, dst string
	err      error
}

type result struct {
	file    string
	entry   *Entry
	skipped bool
	err     error
}

func (c *Converter) findFiles(ctx context.Context, base, out string) (<-chan job, <-chan error, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s: not a directory", base)
	}

	jobs := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(jobs)
		defer close(errc)
		seen := make(map[string]string)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if file == base {
				return nil
			}

			// Only the top level is converted
			if info.Mode().IsDir() {
				return filepath.SkipDir
			}

			// Ignore any hidden files, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' || !info.Mode().IsRegular() || !supported(file) {
				return nil
			}

			j := job{
				src: file,
				dst: filepath.Join(out, Code(file)+cache.Ext),
			}
			if prev, ok := seen[j.dst]; ok {
				j.err = fmt.Errorf("%w: %s also provided by %s", errDuplicate, Code(file), prev)
			} else {
				seen[j.dst] = info.Name()
			}

			select {
			case jobs <- j:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})
	}()
	return jobs, errc, nil
}

func (c *Converter) worker(ctx context.Context, in <-chan job, out chan<- result) {
	for j := range in {
		r := result{file: filepath.Base(j.src), err: j.err}
		if r.err == nil {
			if err := ctx.Err(); err != nil {
				r.err = err
			} else {
				r.entry, r.skipped, r.err = c.ConvertFile(j.src, j.dst)
			}
		}

		select {
		case out <- r:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Converter) startWorkers(ctx context.Context, in <-chan job) <-chan result {
	var wg sync.WaitGroup
	out := make(chan result)
	wg.Add(c.opts.Workers)
	for i := 0; i < c.opts.Workers; i++ {
		go func() {
			defer wg.Done()
			c.worker(ctx, in, out)
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (c *Converter) collect(results <-chan result) *Report {
	report := new(Report)
	for r := range results {
		switch {
		case r.err != nil:
			c.logger.Printf("Failed to convert \"%s\": %v\n", r.file, r.err)
			report.Failed = append(report.Failed, Failure{File: r.file, Err: r.err})
		case r.skipped:
			c.logger.Printf("Skipping unchanged \"%s\"\n", r.file)
			report.Skipped = append(report.Skipped, r.file)
		default:
			c.logger.Printf("Converted \"%s\" (%s, %dx%d, %d bytes)\n", r.file, r.entry.Class, r.entry.Width, r.entry.Height, r.entry.Size)
			if c.catalog != nil {
				if err := c.catalog.Put(r.entry); err != nil {
					c.logger.Printf("Failed to record \"%s\" in catalog: %v\n", r.file, err)
				}
			}
			report.Converted = append(report.Converted, r.file)
		}
	}

	sort.Strings(report.Converted)
	sort.Strings(report.Skipped)
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].File < report.Failed[j].File })

	return report
}

// Convert converts every supported image at the top level of the in
// directory, writing one .bin file per image into out, which is created if
// necessary. A failure to convert one image doesn't stop the others; each
// is listed in the returned Report. An error is only returned if the
// directories can't be used or ctx is cancelled.
func (c *Converter) Convert(ctx context.Context, in, out string) (*Report, error) {
	src, err := filepath.Abs(in)
	if err != nil {
		return nil, err
	}

	dst, err := filepath.Abs(out)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	jobs, errc, err := c.findFiles(ctx, src, dst)
	if err != nil {
		return nil, err
	}

	report := c.collect(c.startWorkers(ctx, jobs))

	if err := <-errc; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Missing = missingWeatherIcons(dst)
	if len(report.Missing) > 0 {
		c.logger.Printf("No icon for weather codes %v\n", report.Missing)
	}

	return report, nil
}
