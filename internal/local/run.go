package local

import (
	"sync"

	"github.com/NielsdaWheelz/ncluster/internal/backend"
)

// Run is the top-level namespace. It owns its Jobs in creation order.
type Run struct {
	name string

	mu     sync.Mutex
	jobs   []*Job
	byName map[string]*Job
}

// Name returns the run name.
func (r *Run) Name() string { return r.name }

// Jobs returns the run's jobs in creation order.
func (r *Run) Jobs() []backend.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]backend.Job, len(r.jobs))
	for i, j := range r.jobs {
		out[i] = j
	}
	return out
}

// Job looks up a job by name.
func (r *Run) Job(name string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.byName[name]
	return j, ok
}

// addJob registers j. A job recreated under an existing name replaces the
// old one in place; its sessions were killed when the new tasks were made.
func (r *Run) addJob(j *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[j.name]; ok {
		for i := range r.jobs {
			if r.jobs[i].name == j.name {
				r.jobs[i] = j
			}
		}
	} else {
		r.jobs = append(r.jobs, j)
	}
	r.byName[j.name] = j
}

// Job is an ordered group of Tasks. It refers to its Run by name.
type Job struct {
	name    string
	runName string
	backend *Backend
	tasks   []*Task
}

// Name returns the job name.
func (j *Job) Name() string { return j.name }

// RunName returns the name of the run the job belongs to.
func (j *Job) RunName() string { return j.runName }

// Run resolves the job's run through the backend registry.
func (j *Job) Run() backend.Run {
	r, ok := j.backend.Run(j.runName)
	if !ok {
		return nil
	}
	return r
}

// Tasks returns the job's tasks in index order.
func (j *Job) Tasks() []backend.Task {
	out := make([]backend.Task, len(j.tasks))
	for i, t := range j.tasks {
		out[i] = t
	}
	return out
}

// Task returns the i-th task, or nil if i is out of range.
func (j *Job) Task(i int) *Task {
	if i < 0 || i >= len(j.tasks) {
		return nil
	}
	return j.tasks[i]
}
