package service

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"typeroo-api/internal/domain"
	"typeroo-api/internal/repository"
)

// Identity is the authenticated caller as resolved from the bearer token.
type Identity struct {
	UserID   string
	Username string
	Roles    []string
}

// HasAnyRole reports whether the caller holds at least one of roles.
func (i Identity) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(i.Roles, r) {
			return true
		}
	}
	return false
}

// ResultInput is a finished test as reported by the client.
type ResultInput struct {
	WPM            float64
	RawWPM         float64
	Accuracy       float64
	Duration       int
	CorrectChars   int
	IncorrectChars int
}

// TestResultService records finished tests and derives history and personal bests.
type TestResultService struct {
	results repository.TestResultRepository
	users   repository.UserRepository
	limits  Limits
	now     func() time.Time
}

func NewTestResultService(results repository.TestResultRepository, users repository.UserRepository, limits Limits) *TestResultService {
	return &TestResultService{
		results: results,
		users:   users,
		limits:  limits,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save stores the result under the caller's identity and counts it on their account.
func (s *TestResultService) Save(ctx context.Context, who Identity, in ResultInput) (*domain.TestResult, error) {
	if err := checkResult(in); err != nil {
		return nil, err
	}
	result := &domain.TestResult{
		ID:             uuid.NewString(),
		UserID:         who.UserID,
		Username:       who.Username,
		WPM:            in.WPM,
		RawWPM:         in.RawWPM,
		Accuracy:       in.Accuracy,
		Duration:       in.Duration,
		CorrectChars:   in.CorrectChars,
		IncorrectChars: in.IncorrectChars,
		Timestamp:      s.now(),
	}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, notFound(err)
	}
	return result, nil
}

func checkResult(in ResultInput) error {
	switch {
	case in.Duration <= 0:
		return invalid("Duration must be positive")
	case in.WPM < 0 || in.RawWPM < 0:
		return invalid("WPM cannot be negative")
	case in.Accuracy < 0 || in.Accuracy > 100:
		return invalid("Accuracy must be between 0 and 100")
	case in.CorrectChars < 0 || in.IncorrectChars < 0:
		return invalid("Character counts cannot be negative")
	}
	return nil
}

// History pages through the caller's results, newest first. page and size
// may be nil to use the defaults.
func (s *TestResultService) History(ctx context.Context, userID string, page, size *int) (domain.ResultPage, error) {
	req, err := s.pageRequest(page, size)
	if err != nil {
		return domain.ResultPage{}, err
	}
	return s.results.ListByUser(ctx, userID, req)
}

// UserHistory is History for any user, addressed by username.
func (s *TestResultService) UserHistory(ctx context.Context, username string, page, size *int) (domain.ResultPage, error) {
	req, err := s.pageRequest(page, size)
	if err != nil {
		return domain.ResultPage{}, err
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return domain.ResultPage{}, notFound(err)
	}
	return s.results.ListByUser(ctx, user.ID, req)
}

// Stats returns the user's best WPM for each tracked duration; durations
// without results report 0.
func (s *TestResultService) Stats(ctx context.Context, username string) (domain.UserStats, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return domain.UserStats{}, notFound(err)
	}

	best := make(map[int]float64, len(domain.StatDurations))
	for _, d := range domain.StatDurations {
		wpm, err := s.results.MaxWPM(ctx, user.ID, d)
		if err != nil {
			return domain.UserStats{}, err
		}
		best[d] = wpm
	}
	return domain.UserStats{
		MaxWPM10: best[10],
		MaxWPM30: best[30],
		MaxWPM60: best[60],
	}, nil
}

func (s *TestResultService) pageRequest(page, size *int) (domain.PageRequest, error) {
	req := domain.PageRequest{Page: 0, Size: s.limits.DefaultPageSize}
	if page != nil {
		req.Page = *page
	}
	if size != nil {
		req.Size = *size
	}
	if req.Page < 0 {
		return domain.PageRequest{}, invalid("Page index must not be less than zero")
	}
	if req.Size < 1 {
		return domain.PageRequest{}, invalid("Page size must not be less than one")
	}
	if s.limits.MaxPageSize > 0 && req.Size > s.limits.MaxPageSize {
		req.Size = s.limits.MaxPageSize
	}
	if req.Page > math.MaxInt/req.Size {
		return domain.PageRequest{}, invalid("Page index is too large")
	}
	return req, nil
}
