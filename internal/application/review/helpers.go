package review

import (
	"context"
	"errors"
	"strings"

	"github.com/lllypuk/reviewguard/internal/domain/errs"
	"github.com/lllypuk/reviewguard/internal/domain/objectid"
	"github.com/lllypuk/reviewguard/internal/domain/review"
)

func requireReviewID(id objectid.ID) error {
	if id.IsZero() {
		return ErrInvalidReviewID
	}
	if _, err := objectid.Parse(id.String()); err != nil {
		return ErrInvalidReviewID
	}
	return nil
}

func requireCaller(caller review.Identity) error {
	if caller.IsZero() {
		return ErrUnauthenticated
	}
	return nil
}

// cleanMessage validates the raw message, sanitizes it and validates the
// result again, so markup-only input cannot produce an empty review.
func cleanMessage(sanitizer Sanitizer, message string) (string, error) {
	if err := review.ValidateMessage(message); err != nil {
		return "", NewValidationError("message must be between 1 and 1000 characters")
	}
	cleaned := strings.TrimSpace(sanitizer.Sanitize(message))
	if err := review.ValidateMessage(cleaned); err != nil {
		return "", NewValidationError("message is empty after sanitization")
	}
	return cleaned, nil
}

// loadReview is the existence read. Its result never decides authorization.
func loadReview(ctx context.Context, store Store, id objectid.ID) (*review.Review, error) {
	r, err := store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, NewStoreError(err)
	}
	return r, nil
}
