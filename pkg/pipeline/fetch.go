package pipeline

import (
	"context"

	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
)

// TreeSource loads family trees. *familyapi.Client implements it.
type TreeSource interface {
	GetFamilyTree(ctx context.Context, id string, refresh bool) (*family.FamilyTreePerson, error)
}

// Fetch loads the tree rooted at id. A nil tree from the source is reported
// as not found.
func (r *Runner) Fetch(ctx context.Context, id string, refresh bool) (*family.FamilyTreePerson, error) {
	if r.Source == nil {
		return nil, ferrors.New(ferrors.ErrCodeInternal, "no tree source configured")
	}
	if err := ferrors.ValidatePersonID(id); err != nil {
		return nil, err
	}
	tree, err := r.Source.GetFamilyTree(ctx, id, refresh)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ferrors.New(ferrors.ErrCodePersonNotFound, "no family tree for %s", id)
	}
	return tree, nil
}
