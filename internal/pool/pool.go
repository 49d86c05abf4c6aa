// Package pool fans independent per-row work out over a bounded set of
// workers. Submission is fire-and-collect: every task is scheduled up
// front and Run blocks until all of them finish. A failing or panicking
// task never cancels its siblings; its outcome lands in the report.
package pool

import (
	"fmt"
	"sync"
)

const DefaultWorkers = 20

// Task is one unit of row work. Key is the row's natural key, carried into
// the report when the task fails.
type Task struct {
	Key string
	Run func() error
}

// Outcome tags one finished task.
type Outcome struct {
	Key string
	Err error
}

// Report aggregates the outcomes of one batch.
type Report struct {
	Completed int
	Failures  []Outcome
}

func (r *Report) Succeeded() int {
	return r.Completed - len(r.Failures)
}

func (r *Report) Failed() int {
	return len(r.Failures)
}

// Run executes all tasks on at most workers goroutines and returns once
// every task has completed. Task order is submission order; completion
// order is not defined.
func Run(workers int, tasks []Task) *Report {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	queue := make(chan Task)
	outcomes := make(chan Outcome, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				outcomes <- execute(task)
			}
		}()
	}

	for _, task := range tasks {
		queue <- task
	}
	close(queue)
	wg.Wait()
	close(outcomes)

	report := &Report{}
	for outcome := range outcomes {
		report.Completed++
		if outcome.Err != nil {
			report.Failures = append(report.Failures, outcome)
		}
	}
	return report
}

func execute(task Task) (outcome Outcome) {
	outcome.Key = task.Key
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	outcome.Err = task.Run()
	return
}
