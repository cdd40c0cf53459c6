package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"identity-reconciler/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag    bool
	yesConfirm bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the contact table schema and cluster invariants",
	Long: `Checks that the contacts table matches the expected model and that every
cluster has exactly one primary with all secondaries linked directly to it.

Examples:
  # Report only
  integrity

  # Repair chained and dangling links (with interactive confirmation)
  integrity --fix

  # Repair with auto-confirm (non-interactive)
  integrity --fix --yes`,
	RunE: runIntegrity,
}

func init() {
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Repair cluster invariant violations")
	integrityCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(integrityCmd)
}

func runIntegrity(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	logg := rt.logger

	svc := integrity.NewService(rt.db, logg)

	logg.Info("Checking contacts schema...")
	schema, err := svc.CheckSchema()
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	if schema.Matched {
		logg.Info("Schema matches expected definition.")
	} else {
		for table, tbl := range schema.Tables {
			if len(tbl.MissingColumns) > 0 {
				logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
			}
			if len(tbl.TypeMismatches) > 0 {
				logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
			}
		}
		for _, e := range schema.Errors {
			logg.Error("Inspection Error", zap.String("error", e))
		}
	}

	logg.Info("Checking cluster invariants...")
	report, err := svc.CheckClusters(ctx)
	if err != nil {
		return fmt.Errorf("cluster check failed: %w", err)
	}
	logg.Info("Cluster report",
		zap.Int("contacts", report.Contacts),
		zap.Int("primaries", report.Primaries),
		zap.Int("secondaries", report.Secondaries),
		zap.Int("issues", len(report.Issues)),
	)
	if report.Healthy {
		return nil
	}

	maxShow := 5
	if len(report.Issues) < maxShow {
		maxShow = len(report.Issues)
	}
	for _, issue := range report.Issues[:maxShow] {
		logg.Warn("Sample issue",
			zap.Int64("contact_id", issue.ContactID),
			zap.String("kind", string(issue.Kind)))
	}
	if len(report.Issues) > maxShow {
		logg.Info("Additional issues not shown", zap.Int("count", len(report.Issues)-maxShow))
	}

	if !fixFlag {
		logg.Info("Run with --fix to repair cluster violations.")
		return nil
	}
	if !confirmDestructiveAction() {
		logg.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	fixed, err := svc.FixClusters(ctx)
	if err != nil {
		return fmt.Errorf("failed to fix clusters: %w", err)
	}
	logg.Info("Clusters repaired",
		zap.Int("promoted", len(fixed.Promoted)),
		zap.Int("relinked", len(fixed.Relinked)))
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nType 'yes' to confirm changes: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
