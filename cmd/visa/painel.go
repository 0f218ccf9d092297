package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gestaozabele/visa/internal/inspecao"
	"github.com/gestaozabele/visa/internal/notificacao"
)

func (c *cli) estatisticasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estatisticas",
		Short: "Mostra os totais do diário e o percentual de cumprimento",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.app.Inspecoes.Statistics(cmd.Context(), nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total: %d\n", st.Total)
			fmt.Fprintf(out, "pendentes: %d\n", st.Pendentes)
			fmt.Fprintf(out, "concluídas: %d\n", st.Concluidas)
			fmt.Fprintf(out, "vencidas: %d\n", st.Vencidas)
			fmt.Fprintf(out, "cumprimento: %.1f%%\n", st.PercentualCumprimento)
			return nil
		},
	}
}

func (c *cli) alertasCmd() *cobra.Command {
	var (
		enviar bool
		limite int
	)
	cmd := &cobra.Command{
		Use:   "alertas",
		Short: "Lista inspeções vencidas e próximas do vencimento",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.app.Notificacoes.Notifications(cmd.Context(), operador.ID, operador.Perfil)
			if err != nil {
				return err
			}
			msg := notificacao.DigestMessage(list, limite)
			fmt.Fprintln(cmd.OutOrStdout(), msg.Text)

			if !enviar {
				return nil
			}
			if c.app.Notifier == nil {
				return notificacao.ErrNotifierDisabled
			}
			return c.app.Notifier.Notify(cmd.Context(), msg)
		},
	}
	cmd.Flags().BoolVar(&enviar, "enviar", false, "envia o resumo ao webhook configurado")
	cmd.Flags().IntVar(&limite, "limite", 10, "máximo de alertas detalhados")
	return cmd
}

func (c *cli) exportarCmd() *cobra.Command {
	var (
		formato  string
		situacao string
		risco    string
		busca    string
	)
	cmd := &cobra.Command{
		Use:   "exportar",
		Short: "Exporta as inspeções filtradas em CSV ou XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			if formato == "" {
				formato = c.app.Config.ExportFormat
			}
			format, err := inspecao.ParseFormat(formato)
			if err != nil {
				return err
			}
			filter := inspecao.Filter{Busca: busca, Situacao: inspecao.Situacao(situacao)}
			if risco != "" {
				if filter.Risco, err = inspecao.ParseRisco(risco); err != nil {
					return err
				}
			}

			items, err := c.app.Inspecoes.Search(cmd.Context(), operador, filter)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return errors.New("nenhuma inspeção para exportar")
			}
			res, err := c.app.Inspecoes.Export(cmd.Context(), items, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d registro(s) em %s\n", res.Registros, res.Arquivo)
			if res.URL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "publicado em %s\n", res.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&formato, "formato", "", "csv ou xlsx (padrão EXPORT_FORMAT)")
	cmd.Flags().StringVar(&situacao, "situacao", "", "vencido, proximo, pendente ou concluido")
	cmd.Flags().StringVar(&risco, "risco", "", "baixo, medio ou alto")
	cmd.Flags().StringVar(&busca, "busca", "", "trecho do nome ou CNPJ")
	return cmd
}
