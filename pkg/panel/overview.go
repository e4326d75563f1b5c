package panel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rhuss/opexcore/pkg/api"
)

// OverviewResult bundles the reads of Overview. A field is nil when the
// backend does not support the corresponding operation.
type OverviewResult struct {
	Stats *api.Stats          `json:"stats,omitempty"`
	Nodes *api.Page[api.Node] `json:"nodes,omitempty"`
	Users *api.Page[api.User] `json:"users,omitempty"`
}

// Overview fetches stats, nodes and users concurrently. The first failure
// cancels the remaining calls and is returned; unsupported operations are
// skipped.
func Overview(ctx context.Context, p Panel, sess *api.Session, req api.PageRequest) (*OverviewResult, error) {
	caps := p.Capabilities()
	res := &OverviewResult{}
	g, ctx := errgroup.WithContext(ctx)

	if caps.Supports(OpStats) {
		g.Go(func() error {
			stats, err := p.Stats(ctx, sess)
			res.Stats = stats
			return err
		})
	}
	if caps.Supports(OpListNodes) {
		g.Go(func() error {
			nodes, err := p.ListNodes(ctx, sess, req)
			res.Nodes = nodes
			return err
		})
	}
	if caps.Supports(OpListUsers) {
		g.Go(func() error {
			users, err := p.ListUsers(ctx, sess, req)
			res.Users = users
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
