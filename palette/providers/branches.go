package providers

import (
	"context"
	"errors"
	"fmt"

	"taskdeck/palette"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	BranchesProviderID = "branches"
)

// NewBranchProvider matches local branch names of the git repository that
// contains repoPath. Outside a repository it returns nothing. onSelect
// receives the short branch name.
func NewBranchProvider(repoPath string, onSelect func(branch string) error) palette.Provider {
	return palette.Provider{
		ID:    BranchesProviderID,
		Label: "Branches",
		Search: func(ctx context.Context, query string, _ palette.Context) ([]palette.Result, error) {
			if query == "" {
				return nil, nil
			}
			return searchBranches(ctx, repoPath, query, onSelect)
		},
	}
}

func searchBranches(ctx context.Context, repoPath, query string, onSelect func(string) error) ([]palette.Result, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	var current plumbing.ReferenceName
	if head, err := repo.Head(); err == nil {
		current = head.Name()
	}

	refs, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer refs.Close()

	var out []palette.Result
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := ref.Name().Short()
		score := bestScore(query, 0, field{text: name, weight: 60, min: 0.3})
		if score <= 0 {
			return nil
		}

		subtitle := ref.Hash().String()[:7]
		if ref.Name() == current {
			subtitle += " (current)"
		}
		out = append(out, palette.Result{
			ID:       "branch:" + name,
			Title:    name,
			Subtitle: subtitle,
			Group:    "Branches",
			Score:    score,
			OnSelect: func(palette.Context) error {
				if onSelect == nil {
					return nil
				}
				return onSelect(name)
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
