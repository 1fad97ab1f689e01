package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "apuracao",
		Short: "Apuração de faturamento por competência a partir de planilhas e XMLs de NF-e",
		Long: `apuracao lê planilhas de itens (csv, xlsx, xls) e XMLs de NF-e, separa os itens
por competência pela chave de acesso e mostra, para cada competência, os totais
por CFOP, as categorias de faturamento e os números de nota faltantes.

Exemplo:
  apuracao relatorio itens.xlsx notas/*.xml --devolucoes devolucoes.yaml --confirmar --saida apuracao.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mostra o log detalhado da leitura dos arquivos")

	root.AddCommand(newRelatorioCmd(&verbose))
	return root
}
