package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"leadswarm/internal/closer"
	"leadswarm/internal/config"
	"leadswarm/internal/events"
	"leadswarm/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run <niche> <location>",
	Short: "Run the full pipeline once: scout, analyst, sniper",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		runner, err := buildRunner(cmd.Context(), rt, nil, nil)
		if err != nil {
			return err
		}

		st, err := runner.Run(cmd.Context(), args[0], args[1])
		for _, s := range st.Stages {
			if s.Error != "" {
				fmt.Printf("%-8s failed: %s\n", s.Stage, s.Error)
			} else {
				fmt.Printf("%-8s ok, count=%d\n", s.Stage, s.Count)
			}
		}
		return err
	},
}

// buildRunner wires real providers into the pipeline. The sender and search
// provider are required; enricher and mailbox degrade gracefully.
func buildRunner(ctx context.Context, rt *runtime, cfgFn func() config.Config, hub *events.Hub) (*pipeline.Runner, error) {
	provider, err := buildProvider(rt.cfg)
	if err != nil {
		return nil, err
	}
	sender, err := buildSender(rt.cfg)
	if err != nil {
		return nil, err
	}
	if cfgFn == nil {
		cfg := rt.cfg
		cfgFn = func() config.Config { return cfg }
	}

	return pipeline.NewRunner(pipeline.Deps{
		DB:       rt.db.Pool,
		Cfg:      cfgFn,
		Provider: provider,
		Getter:   buildFetcher(rt.cfg),
		Analyzer: buildAnalyzer(ctx, rt.cfg),
		Sender:   sender,
		Enricher: buildEnricher(),
		Mailbox: func(ctx context.Context) (closer.Mailbox, error) {
			return dialMailbox(ctx, cfgFn())
		},
		Hub: hub,
	}), nil
}
