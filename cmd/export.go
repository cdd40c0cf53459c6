package cmd

import (
	"fmt"

	"identity-reconciler/core/contact"
	"identity-reconciler/core/storage"
	"identity-reconciler/feature/export"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportPrefix string

// exportCmd writes a cluster snapshot to object storage.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every identity cluster to object storage",
	Long:  `Builds the consolidated view of every cluster and uploads it as one JSON document to the configured bucket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		cfg := rt.cfg.Storage
		if cmd.Flags().Changed("prefix") {
			cfg.Prefix = exportPrefix
		}

		client, err := storage.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}

		svc := export.NewService(contact.NewGormStore(rt.db), client, cfg, rt.logger)
		res, err := svc.Export(ctx)
		if err != nil {
			return err
		}

		rt.logger.Info("Export completed",
			zap.String("bucket", res.Bucket),
			zap.String("key", res.Key),
			zap.Int("clusters", res.Clusters),
			zap.Int64("bytes", res.Size),
			zap.Strings("pruned", res.Pruned))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPrefix, "prefix", "", "Object key prefix (overrides storage.prefix)")
	RootCmd.AddCommand(exportCmd)
}
