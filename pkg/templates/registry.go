package templates

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/types"
)

// Failure is a template left out of discovery because its setup script
// failed to load
type Failure struct {
	Template   string
	ScriptPath string
	Err        error
}

// Registry discovers templates under templates roots
type Registry struct {
	fs   types.FS
	host types.Host
}

// NewRegistry creates a registry whose templates use fsys and host
func NewRegistry(fsys types.FS, host types.Host) *Registry {
	return &Registry{fs: fsys, host: host}
}

// Discover loads every template under root, in directory listing order.
// Templates that fail to load are reported to the host and omitted.
func (r *Registry) Discover(ctx context.Context, root string) ([]*Template, error) {
	found, failures, err := r.scan(ctx, root)
	if err != nil {
		return nil, err
	}
	r.report(failures)
	return found, nil
}

// DiscoverAll discovers every root concurrently and returns the templates
// flattened in roots order. Same-named templates under different roots are
// all kept. Load failures are reported once every root is done.
func (r *Registry) DiscoverAll(ctx context.Context, roots []string) ([]*Template, error) {
	logger := logging.GetLogger("templates.discovery")
	defer logging.LogOperationStart(logger, "discover templates")()

	found := make([][]*Template, len(roots))
	failures := make([][]Failure, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			templates, failed, err := r.scan(gctx, root)
			if err != nil {
				return err
			}
			found[i], failures[i] = templates, failed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*Template
	for i := range roots {
		r.report(failures[i])
		all = append(all, found[i]...)
	}
	logger.Debug().Int("roots", len(roots)).Int("templates", len(all)).Msg("Discovery complete")
	return all, nil
}

func (r *Registry) scan(ctx context.Context, root string) ([]*Template, []Failure, error) {
	logger := logging.GetLogger("templates.discovery").With().Str("root", root).Logger()

	children, err := r.fs.ReadDir(root)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrTemplateDiscovery, "failed to list templates in %s", root).
			WithDetail("path", root)
	}

	var (
		found    []*Template
		failures []Failure
	)
	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		t := newTemplate(r.fs, r.host, root, child.Name())
		if err := t.load(ctx); err != nil {
			logger.Warn().Err(err).Str("template", t.Name).Msg("Template failed to load")
			failures = append(failures, Failure{Template: t.Name, ScriptPath: t.ScriptPath, Err: err})
			continue
		}
		logger.Debug().Str("template", t.Name).Str("display", t.DisplayName()).Msg("Discovered template")
		found = append(found, t)
	}
	return found, failures, nil
}

func (r *Registry) report(failures []Failure) {
	for _, f := range failures {
		Report(r.host, f.Template, ActivityLoad, f.ScriptPath, f.Err)
	}
}
