package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/expansion"
	"github.com/jacksonlee411/orgtree/modules/orgtree/domain/ports"
	"github.com/jacksonlee411/orgtree/modules/orgtree/infrastructure/persistence"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/renderer"
	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/textview"
	"github.com/jacksonlee411/orgtree/modules/orgtree/services"
	"github.com/jacksonlee411/orgtree/pkg/configuration"
)

type printOptions struct {
	source    string
	fixture   string
	expand    []string
	expandAll bool
	reveal    string
	maxDepth  int
}

func newPrintCmd() *cobra.Command {
	opts := printOptions{}
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the visible org tree for an expansion state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", configuration.SourceYAML, "tree source: yaml|postgres")
	cmd.Flags().StringVar(&opts.fixture, "fixture", "config/orgtree.yaml", "fixture path for --source=yaml")
	cmd.Flags().StringSliceVar(&opts.expand, "expand", nil, "node ids to expand (repeatable or comma separated)")
	cmd.Flags().BoolVar(&opts.expandAll, "expand-all", false, "expand every node that has children")
	cmd.Flags().StringVar(&opts.reveal, "reveal", "", "expand the ancestors of this node id")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", renderer.DefaultMaxDepth, "abort when rendering deeper than this (0 disables)")
	return cmd
}

func runPrint(ctx context.Context, w io.Writer, opts printOptions) error {
	store, closeStore, err := openStore(ctx, opts.source, opts.fixture)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := services.NewOrgTreeService(store, nil, services.WithMaxDepth(opts.maxDepth))

	set := expansion.New(opts.expand...)
	if opts.expandAll {
		if set, err = svc.ExpandAll(ctx); err != nil {
			return err
		}
	}
	if opts.reveal != "" {
		if set, err = svc.ExpandPath(ctx, set, opts.reveal); err != nil {
			return err
		}
	}

	rendered, err := svc.Render(ctx, set)
	if err != nil {
		return err
	}
	return textview.Write(w, rendered)
}

func openStore(ctx context.Context, source, fixture string) (ports.TreeStore, func(), error) {
	switch source {
	case configuration.SourceYAML:
		store, err := persistence.NewYAMLTreeStore(fixture)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case configuration.SourcePostgres:
		pool, err := connectDB(ctx)
		if err != nil {
			return nil, nil, err
		}
		return persistence.NewPGTreeStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q (expected yaml|postgres)", source)
	}
}
