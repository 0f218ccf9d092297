package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gestaozabele/visa/internal/app"
	"github.com/gestaozabele/visa/internal/auth"
	"github.com/gestaozabele/visa/internal/config"
	"github.com/gestaozabele/visa/internal/repo"
)

// operador é a identidade usada pela CLI: enxerga todas as inspeções.
var operador = auth.Identity{Username: "cli", Nome: "Operador", Perfil: repo.PerfilGerencia}

type cli struct {
	app *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "visa",
		Short:         "Administração do diário de inspeções sanitárias",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.app, err = app.New(cmd.Context(), cfg, log.Logger)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}

	root.AddCommand(c.usuariosCmd(), c.estatisticasCmd(), c.alertasCmd(), c.exportarCmd())
	return root
}
