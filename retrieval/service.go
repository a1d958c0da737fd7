package retrieval

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ragforge/queryengine/apperr"
	"github.com/ragforge/queryengine/domain"
)

// Service fans out a query to the vector and lexical backends concurrently
// and joins the results. Both backends are always attempted; the request
// only fails if both fail.
type Service struct {
	Vector         VectorStore
	Lexical        LexicalIndex
	VectorTimeout  time.Duration
	LexicalTimeout time.Duration
	Logger         *slog.Logger
}

// Result is the joined output of both backends, plus which (if any)
// degraded during this call.
type Result struct {
	VectorHits      []domain.RetrievalHit
	LexicalHits     []domain.RetrievalHit
	VectorDegraded  bool
	LexicalDegraded bool
}

// Search issues both backend searches concurrently under the query's ACL
// filter. It returns UnauthorizedError without calling either backend if
// user is not well-formed, and RetrievalBackendError{both} if both
// backends fail.
func (s *Service) Search(ctx context.Context, q domain.Query, k int) (Result, error) {
	if !q.User.WellFormed() {
		return Result{}, apperr.Unauthorized("user context missing userId or tenantId")
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	aclFilter := BuildACLFilter(q.User, q.Filter)

	var (
		res          Result
		vectorErr    error
		lexicalErr   error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		timeout := s.VectorTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		callCtx, cancel := context.WithTimeout(gctx, timeout)
		defer cancel()

		hits, err := s.Vector.SearchVectors(callCtx, q.Text, aclFilter, k)
		if err != nil {
			vectorErr = err
			return nil
		}
		res.VectorHits = assignRanks(hits)
		return nil
	})

	g.Go(func() error {
		timeout := s.LexicalTimeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		callCtx, cancel := context.WithTimeout(gctx, timeout)
		defer cancel()

		hits, err := s.Lexical.SearchText(callCtx, q.Text, aclFilter, k)
		if err != nil {
			lexicalErr = err
			return nil
		}
		res.LexicalHits = assignRanks(hits)
		return nil
	})

	_ = g.Wait()

	if vectorErr != nil && lexicalErr != nil {
		return Result{}, apperr.RetrievalBackendErr("both", joinErrs(vectorErr, lexicalErr))
	}
	if vectorErr != nil {
		logger.Warn("vector backend failed, continuing with lexical only", "error", vectorErr)
		res.VectorDegraded = true
	}
	if lexicalErr != nil {
		logger.Warn("lexical backend failed, continuing with vector only", "error", lexicalErr)
		res.LexicalDegraded = true
	}

	return res, nil
}

func assignRanks(hits []domain.RetrievalHit) []domain.RetrievalHit {
	for i := range hits {
		hits[i].Rank = i + 1
	}
	return hits
}

func joinErrs(a, b error) error {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &multiErr{a, b}
}

type multiErr struct {
	a, b error
}

func (m *multiErr) Error() string {
	return m.a.Error() + "; " + m.b.Error()
}
