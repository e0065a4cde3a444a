package issues

import (
	"sync"

	"github.com/discordplays/nationstates/nationstates"
)

// Registry owns the running issue-answering jobs. Command handlers
// receive it explicitly; there is no global job lookup.
type Registry struct {
	mu   sync.RWMutex
	jobs []*Answerer
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a job. Each job must own a distinct channel.
func (r *Registry) Add(job *Answerer) {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
}

// Jobs returns a snapshot of all registered jobs
func (r *Registry) Jobs() []*Answerer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*Answerer, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

// ByNation returns the job answering for the given nation, or nil
func (r *Registry) ByNation(nation string) *Answerer {
	name := nationstates.NormalizeNationName(nation)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, job := range r.jobs {
		if job.Config().Nation == name {
			return job
		}
	}
	return nil
}
