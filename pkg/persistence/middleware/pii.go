package middleware

import (
	"context"
	"regexp"

	"github.com/latticelabs/lattice/pkg/domain"
	"github.com/latticelabs/lattice/pkg/ports"
)

type piiMiddleware struct {
	next     ports.JobStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks substrings matching
// the patterns in the user-authored fields of a job record before it is
// persisted. Typical patterns cover emails or API keys pasted into a
// query.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.JobStore) ports.JobStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, job *domain.Job) error {
	// Clone to avoid side effects on the record used by the job manager.
	cloned := *job
	cloned.UserQuery = m.mask(job.UserQuery)
	cloned.Error = m.mask(job.Error)
	return m.next.Save(ctx, &cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Job, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, "***")
	}
	return s
}
