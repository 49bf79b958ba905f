package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"leadswarm/internal/analyst"
	"leadswarm/internal/closer"
	"leadswarm/internal/outreach"
	"leadswarm/internal/scout"
)

var scoutCmd = &cobra.Command{
	Use:   "scout <niche> <location>",
	Short: "Search for businesses in a niche and city",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		provider, err := buildProvider(rt.cfg)
		if err != nil {
			return err
		}

		added, err := scout.Run(cmd.Context(), rt.db.Pool, rt.cfg, provider, args[0], args[1])
		if err != nil {
			return fmt.Errorf("scout added %d before failing: %w", added, err)
		}
		fmt.Printf("scout added %d new leads\n", added)
		return nil
	},
}

var analystCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Fetch and score every unscanned lead",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		analyzed, err := analyst.Run(cmd.Context(), rt.db.Pool, rt.cfg,
			buildFetcher(rt.cfg), buildAnalyzer(cmd.Context(), rt.cfg))
		if err != nil {
			return err
		}
		fmt.Printf("analyst processed %d leads\n", analyzed)
		return nil
	},
}

var sniperCmd = &cobra.Command{
	Use:   "sniper",
	Short: "Email every qualified lead that was never contacted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		sender, err := buildSender(rt.cfg)
		if err != nil {
			return err
		}

		sent, err := outreach.Run(cmd.Context(), rt.db.Pool, rt.cfg, sender, buildEnricher())
		if err != nil {
			return err
		}
		fmt.Printf("sniper sent %d emails\n", sent)
		return nil
	},
}

var closerCmd = &cobra.Command{
	Use:   "closer",
	Short: "Check the inbox for replies and nudge silent leads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		sender, err := buildSender(rt.cfg)
		if err != nil {
			return err
		}
		mbox, err := dialMailbox(cmd.Context(), rt.cfg)
		if err != nil {
			return err
		}
		defer mbox.Close()

		res, err := closer.Run(cmd.Context(), rt.db.Pool, rt.cfg, mbox, sender)
		if err != nil {
			return err
		}
		fmt.Printf("closer recorded %d replies, sent %d follow-ups\n", res.Replied, res.FollowedUp)
		return nil
	},
}
