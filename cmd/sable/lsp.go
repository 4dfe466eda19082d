package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sable/internal/linter"
	"sable/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the Sable language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	// Редакторы запускают сервер в корне воркспейса; конфигурация ищется
	// оттуда, сам корень приходит позже в initialize.
	_, cfg, err := resolveProject(".")
	if err != nil {
		return err
	}

	svc := linter.NewService(enabledRules(cfg))
	defer svc.Close()

	log.Debug().Msg("language server listening on stdio")
	server := lsp.NewServer(os.Stdin, os.Stdout, svc, lsp.ServerOptions{})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
