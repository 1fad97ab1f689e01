package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/billing"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/cancellation"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/export"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/ingest"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type relatorioOptions struct {
	returnsFile string
	confirm     bool
	output      string
}

func newRelatorioCmd(verbose *bool) *cobra.Command {
	var opts relatorioOptions

	cmd := &cobra.Command{
		Use:   "relatorio ARQUIVOS...",
		Short: "Gera a apuração dos arquivos informados",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if *verbose {
				level = "debug"
			}
			zl, err := logger.New(level, "local")
			if err != nil {
				return err
			}
			defer zl.Sync()
			return runRelatorio(cmd.Context(), cmd.OutOrStdout(), args, opts, zl)
		},
	}
	cmd.Flags().StringVar(&opts.returnsFile, "devolucoes", "", "Arquivo YAML com os valores de devolução por CFOP")
	cmd.Flags().BoolVar(&opts.confirm, "confirmar", false, "Confirma as devoluções e mostra o total líquido")
	cmd.Flags().StringVar(&opts.output, "saida", "", "Grava a planilha da apuração (.xlsx) ou o CSV (.csv) neste caminho")
	return cmd
}

func runRelatorio(ctx context.Context, out io.Writer, paths []string, opts relatorioOptions, zl *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	files := make([]domain.UploadedFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("erro ao ler %s: %w", path, err)
		}
		files = append(files, domain.UploadedFile{Name: filepath.Base(path), Data: data})
	}

	items, err := ingest.NewService(zl).ParseFiles(files)
	if err != nil {
		return err
	}

	svc := billing.NewService(cancellation.NewMemoryRepository(), zl)
	summary, err := svc.CreateSession(ctx, items)
	if err != nil {
		return err
	}

	if opts.returnsFile != "" {
		amounts, err := loadReturnsFile(opts.returnsFile)
		if err != nil {
			return err
		}
		for _, entry := range amounts {
			if err := svc.SetReturnAmount(ctx, summary.ID, entry.CFOP, entry.Value); err != nil {
				return fmt.Errorf("devolução do CFOP %s: %w", entry.CFOP, err)
			}
		}
	}
	if opts.confirm {
		if _, err := svc.ConfirmReturns(ctx, summary.ID); err != nil {
			return err
		}
	}

	reports, err := svc.Reports(ctx, summary.ID)
	if err != nil {
		return err
	}
	printSummary(out, summary, reports)

	if opts.output == "" {
		return nil
	}
	org, exports, err := svc.Export(ctx, summary.ID)
	if err != nil {
		return err
	}
	var data []byte
	switch filepath.Ext(opts.output) {
	case ".csv":
		data, err = export.CSV(exports)
	default:
		data, err = export.Workbook(org, exports)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", opts.output, err)
	}
	fmt.Fprintf(out, "\nApuração gravada em %s\n", opts.output)
	return nil
}

func printSummary(out io.Writer, summary *domain.SessionSummary, reports []domain.PeriodReport) {
	if summary.OrganizationID != "" {
		fmt.Fprintf(out, "CNPJ: %s\n", summary.OrganizationID)
	}
	fmt.Fprintf(out, "Registros: %d\n", summary.Records)

	for _, r := range reports {
		fmt.Fprintf(out, "\nCompetência %s\n", r.Period)
		for _, t := range r.CFOPTotals {
			fmt.Fprintf(out, "  CFOP %-6s %15s\n", t.CFOP, export.FormatMoney(t.Total))
		}
		fmt.Fprintf(out, "  Tributado normal        %15s\n", export.FormatMoney(r.Categories.TaxedNormal))
		fmt.Fprintf(out, "  Tributado monofásico    %15s\n", export.FormatMoney(r.Categories.TaxedMonofasico))
		fmt.Fprintf(out, "  Substituto normal       %15s\n", export.FormatMoney(r.Categories.SubstituteNormal))
		fmt.Fprintf(out, "  Substituto monofásico   %15s\n", export.FormatMoney(r.Categories.SubstituteMonofasico))
		fmt.Fprintf(out, "  Total faturamento       %15s\n", export.FormatMoney(r.RevenueTotal))
		if r.Returns != nil {
			fmt.Fprintf(out, "  Devoluções              %15s\n", export.FormatMoney(r.Returns.Total))
			fmt.Fprintf(out, "  Total líquido           %15s\n", export.FormatMoney(r.Returns.Net))
		}
		for _, g := range r.Gaps {
			if len(g.Missing) == 0 {
				continue
			}
			fmt.Fprintf(out, "  Série %s faltantes: %v\n", g.Series, g.Missing)
		}
	}
}
