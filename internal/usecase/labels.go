package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/naka-gawa/release-notes/internal/domain"
	"github.com/naka-gawa/release-notes/internal/gateway"
)

// LabelLister fetches the labels defined on a repository.
type LabelLister struct {
	fetcher gateway.Fetcher
	logger  *zap.Logger
}

// NewLabelLister creates a new LabelLister instance.
func NewLabelLister(fetcher gateway.Fetcher, logger *zap.Logger) *LabelLister {
	return &LabelLister{fetcher: fetcher, logger: logger}
}

// Labels returns the label names of repo. When the repository does not
// exist it writes the not-found message to w and returns no labels and no
// error.
func (l *LabelLister) Labels(ctx context.Context, w io.Writer, repo domain.Repository) ([]string, error) {
	labels, err := l.fetcher.FetchLabels(ctx, repo)
	if err == nil {
		return labels, nil
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		return nil, err
	}
	l.logger.Warn("repository not found", zap.Stringer("repo", repo), zap.Error(err))
	if _, werr := fmt.Fprintln(w, notFoundMessage); werr != nil {
		return nil, fmt.Errorf("failed to write message: %w", werr)
	}
	return nil, nil
}

// List writes the label names of repo to w, one per line.
func (l *LabelLister) List(ctx context.Context, w io.Writer, repo domain.Repository) error {
	labels, err := l.Labels(ctx, w, repo)
	if err != nil {
		return err
	}
	for _, label := range labels {
		if _, err := fmt.Fprintln(w, label); err != nil {
			return fmt.Errorf("failed to write label: %w", err)
		}
	}
	return nil
}
