package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gestaozabele/visa/internal/service"
)

func (c *cli) usuariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usuarios",
		Short: "Gerencia contas de acesso",
	}

	listar := &cobra.Command{
		Use:   "listar",
		Short: "Lista os usuários cadastrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := c.app.Contas.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLOGIN\tNOME\tPERFIL\tTERRITÓRIO\tATIVO")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\n", u.ID, u.Username, u.Nome, u.Perfil, u.Territorio, u.Ativo)
			}
			return tw.Flush()
		},
	}

	var novo service.NovoUsuario
	criar := &cobra.Command{
		Use:   "criar",
		Short: "Cadastra um novo usuário",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.app.Contas.CreateUser(cmd.Context(), novo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "usuário %s criado com id %d\n", u.Username, u.ID)
			return nil
		},
	}
	criar.Flags().StringVar(&novo.Username, "login", "", "login de acesso")
	criar.Flags().StringVar(&novo.Senha, "senha", "", "senha inicial")
	criar.Flags().StringVar(&novo.Nome, "nome", "", "nome de exibição")
	criar.Flags().StringVar(&novo.Perfil, "perfil", "inspetor", "inspetor, coordenador ou gerencia")
	criar.Flags().StringVar(&novo.Territorio, "territorio", "", "território de atuação")

	desativar := &cobra.Command{
		Use:   "desativar <id>",
		Short: "Desativa um usuário sem apagar seus registros",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("id inválido: %s", args[0])
			}
			if err := c.app.Contas.DeactivateUser(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "usuário %d desativado\n", id)
			return nil
		},
	}

	cmd.AddCommand(listar, criar, desativar)
	return cmd
}
