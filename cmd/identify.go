package cmd

import (
	"encoding/json"
	"fmt"

	"identity-reconciler/core/contact"
	"identity-reconciler/core/reconcile"
	"identity-reconciler/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	identifyEmail  string
	identifyPhone  string
	identifyDryRun bool
)

// identifyCmd reconciles one observation from the shell.
var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Reconcile an email and/or phone number",
	Long: `Runs one reconciliation against the configured database and prints the
consolidated contact as JSON.

Examples:
  # Link an observation
  identify --email mcfly@hillvalley.edu --phone 123456

  # Show what would change without writing
  identify --email mcfly@hillvalley.edu --phone 123456 --dry-run`,
	RunE: runIdentify,
}

func init() {
	identifyCmd.Flags().StringVar(&identifyEmail, "email", "", "Email address")
	identifyCmd.Flags().StringVar(&identifyPhone, "phone", "", "Phone number")
	identifyCmd.Flags().BoolVar(&identifyDryRun, "dry-run", false, "Print the planned actions without applying them")

	RootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	engine := reconcile.NewEngine(contact.NewGormStore(rt.db), rt.logger, rt.cfg.Reconcile)
	email, phone := utils.NonEmpty(identifyEmail), utils.NonEmpty(identifyPhone)

	var out any
	if identifyDryRun {
		plan, err := engine.Plan(ctx, email, phone)
		if err != nil {
			return err
		}
		rt.logger.Info("Planned reconciliation",
			zap.String("outcome", string(plan.Outcome)),
			zap.Int("actions", len(plan.Actions)))
		out = plan
	} else {
		view, err := engine.Identify(ctx, email, phone)
		if err != nil {
			return err
		}
		out = map[string]any{"contact": view}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
