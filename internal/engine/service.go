package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/profdiff/internal/logging"
)

// Service is the comparison collaborator consumed by the view model. The
// local Comparer and the remote HTTP client both implement it.
type Service interface {
	// ListProfiles returns every profile that can be selected for comparison.
	ListProfiles(ctx context.Context) ([]ProfileInfo, error)

	// Compare returns the comparison tree of two profiles.
	Compare(ctx context.Context, id1, id2 string) (*Result, error)

	// FetchDetail returns the field-level comparison of one object.
	FetchDetail(ctx context.Context, id1, id2, objectKey string) ([]DetailRow, error)
}

// Source provides profile snapshots to the Comparer.
type Source interface {
	ListProfiles(ctx context.Context) ([]ProfileInfo, error)
	LoadProfile(ctx context.Context, id string) (*Profile, error)
}

// Sentinel errors.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrSameProfile     = errors.New("profiles must be different")
	ErrMissingProfile  = errors.New("both profiles must be selected")
)

// Service error codes.
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeInternal       = "internal"
)

// ServiceError carries a message that is safe to show to the user.
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// UserMessage returns the user-facing message carried by err, or fallback
// when err carries none.
func UserMessage(err error, fallback string) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return fallback
}

// ValidatePair checks that two profile IDs can be compared.
func ValidatePair(id1, id2 string) error {
	if id1 == "" || id2 == "" {
		return &ServiceError{Code: CodeInvalidRequest, Message: ErrMissingProfile.Error(), Err: ErrMissingProfile}
	}
	if id1 == id2 {
		return &ServiceError{Code: CodeInvalidRequest, Message: ErrSameProfile.Error(), Err: ErrSameProfile}
	}
	return nil
}

// Comparer implements Service by diffing snapshots loaded from a Source.
type Comparer struct {
	source Source
}

// NewComparer creates a Comparer over src.
func NewComparer(src Source) *Comparer {
	return &Comparer{source: src}
}

// ListProfiles implements Service.
func (c *Comparer) ListProfiles(ctx context.Context) ([]ProfileInfo, error) {
	profiles, err := c.source.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return profiles, nil
}

// Compare implements Service. Both snapshots are loaded concurrently.
func (c *Comparer) Compare(ctx context.Context, id1, id2 string) (*Result, error) {
	logger := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", "Compare").
		Logger()

	p1, p2, err := c.loadPair(ctx, id1, id2)
	if err != nil {
		logger.Debug().Ctx(ctx).Err(err).Str("profile1", id1).Str("profile2", id2).Msg("compare failed")
		return nil, err
	}

	result := CompareProfiles(p1, p2)
	logger.Debug().Ctx(ctx).
		Str("profile1", id1).
		Str("profile2", id2).
		Int("differences", result.Summary.TotalDifferent()).
		Msg("comparison computed")
	return result, nil
}

// FetchDetail implements Service.
func (c *Comparer) FetchDetail(ctx context.Context, id1, id2, objectKey string) ([]DetailRow, error) {
	if objectKey == "" {
		return nil, &ServiceError{Code: CodeInvalidRequest, Message: "object name is required"}
	}
	p1, p2, err := c.loadPair(ctx, id1, id2)
	if err != nil {
		return nil, err
	}
	return CompareFields(p1, p2, objectKey), nil
}

func (c *Comparer) loadPair(ctx context.Context, id1, id2 string) (*Profile, *Profile, error) {
	if err := ValidatePair(id1, id2); err != nil {
		return nil, nil, err
	}

	var p1, p2 *Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p1, err = c.load(gctx, id1)
		return err
	})
	g.Go(func() error {
		var err error
		p2, err = c.load(gctx, id2)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return p1, p2, nil
}

func (c *Comparer) load(ctx context.Context, id string) (*Profile, error) {
	p, err := c.source.LoadProfile(ctx, id)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, &ServiceError{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("profile %q not found", id),
			Err:     err,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", id, err)
	}
	return p, nil
}
