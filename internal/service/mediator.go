package service

import (
	"context"
	"fmt"
)

// resolveAndAuthorize is the access-control gate in front of every
// operation that addresses a resource by identifier. It resolves the
// resource with no owner filter, then compares its owner against the
// requester, strictly in that order: an absent resource is NotFound,
// an existing resource owned by someone else is Forbidden. The two
// outcomes are never collapsed.
//
// ownerOf may need its own lookup (a set's owner lives on its parent
// workout), so it takes the context and can fail.
func resolveAndAuthorize[T any](
	ctx context.Context,
	kind string,
	action string,
	userID int64,
	lookup func(context.Context) (*T, error),
	ownerOf func(context.Context, *T) (int64, error),
) (*T, error) {
	resource, err := lookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s: %w", kind, err)
	}

	if resource == nil {
		return nil, notFound(kind)
	}

	owner, err := ownerOf(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s owner: %w", kind, err)
	}

	if owner != userID {
		return nil, forbidden(action, kind)
	}

	return resource, nil
}
