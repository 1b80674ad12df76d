package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tabsplit-dev/tabsplit/internal/extract"
	"github.com/tabsplit-dev/tabsplit/internal/server"
	"github.com/tabsplit-dev/tabsplit/internal/storage/sqlite"
)

func newServeCommand(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for extraction, allocation and stored receipts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			store, err := sqlite.New(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			prompts, err := extract.LoadPrompts(cfg.Extraction.PromptPath)
			if err != nil {
				return err
			}
			client := extract.NewOllamaClient(cfg.Extraction.OllamaHost, cfg.Extraction.Model)
			extractor := extract.New(client, prompts)

			defaults, err := cfg.Split.Defaults()
			if err != nil {
				return err
			}

			slog.Info("starting server", "addr", addr, "db", cfg.Storage.DBPath)
			return server.New(store, extractor, defaults).Router().Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to the configured server.addr)")

	return cmd
}
