package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"bilancio/internal/backend"
	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/worker"
)

type migrateCmd struct{}

// Run reports success; opening the repository already applied migrations.
func (c *migrateCmd) Run(rt *runtime) error {
	if err := rt.repo.Ping(rt.ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	fmt.Fprintln(rt.out, "database is up to date")
	return nil
}

type categoriesCmd struct {
	List categoriesListCmd `cmd:"" default:"1" help:"List categories."`
	Add  categoriesAddCmd  `cmd:"" help:"Create a category."`
}

type categoriesListCmd struct{}

func (c *categoriesListCmd) Run(rt *runtime) error {
	cats, err := rt.svc.Categories.List(rt.ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME")
	for _, cat := range cats {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", cat.ID, cat.Type, cat.Name)
	}
	return tw.Flush()
}

type categoriesAddCmd struct {
	Name string `arg:"" help:"Category name."`
	Type string `name:"type" short:"t" default:"expense" enum:"income,expense" help:"Entry type (${enum})."`
}

func (c *categoriesAddCmd) Run(rt *runtime) error {
	t := core.Expense
	if c.Type == "income" {
		t = core.Income
	}
	id, err := rt.svc.Categories.Create(rt.ctx, c.Name, t)
	if err != nil {
		return err
	}
	fmt.Fprintln(rt.out, id)
	return nil
}

type incomeCmd struct {
	Set incomeSetCmd `cmd:"" help:"Set the income of a month."`
}

// PeriodFlags selects a month.
type PeriodFlags struct {
	Year  int `required:"" help:"Year, e.g. 2025."`
	Month int `required:"" help:"Month, 1-12."`
}

type incomeSetCmd struct {
	PeriodFlags
	Amount string `arg:"" help:"Amount, e.g. 3000.00."`
}

func (c *incomeSetCmd) Run(rt *runtime) error {
	amount, err := core.ParseMoney(c.Amount)
	if err != nil {
		return err
	}
	if err := rt.svc.Incomes.Upsert(rt.ctx, c.Year, c.Month, amount); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "income for %s set to %s\n", core.NewPeriod(c.Year, c.Month), amount)
	return nil
}

type summaryCmd struct {
	PeriodFlags
	JSON bool `name:"json" help:"Print JSON instead of a table."`
}

func (c *summaryCmd) Run(rt *runtime) error {
	s, err := rt.svc.Summaries.GetMonthly(rt.ctx, c.Year, c.Month)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(rt.out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	tw := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Period\t%s\t\n", s.Period)
	fmt.Fprintf(tw, "Income\t%s\t\n", s.Income)
	fmt.Fprintf(tw, "Expense\t%s\t\n", s.Expense)
	fmt.Fprintf(tw, "Invested\t%s\t\n", s.Invested)
	fmt.Fprintf(tw, "Balance\t%s\t\n", s.Balance)
	if len(s.ExpensesByCategory) > 0 {
		fmt.Fprintln(tw, "\t\t")
		for _, row := range s.ExpensesByCategory {
			fmt.Fprintf(tw, "%s\t%s\t\n", row.Category, row.Total)
		}
	}
	return tw.Flush()
}

type exportCmd struct {
	Target      string `name:"target" env:"EXPORT_TARGET" default:"memory" enum:"memory,sheets,none" help:"Export target (${enum})."`
	Spreadsheet string `name:"spreadsheet-id" env:"GOOGLE_SPREADSHEET_ID" help:"Google Spreadsheet ID, required for sheets."`
	SheetName   string `name:"sheet-name" env:"GOOGLE_SHEET_NAME" default:"Summary" help:"Base sheet name; the year is prefixed."`
	Concurrency int    `name:"concurrency" env:"RESYNC_CONCURRENCY" default:"4" help:"Parallel period exports."`
	Year        int    `help:"Export only this year (with --month)."`
	Month       int    `help:"Export only this month (with --year)."`
}

func (c *exportCmd) Run(rt *runtime) error {
	backendCfg, err := backend.FromAppConfig(&config.Config{
		ExportTarget:        c.Target,
		GoogleSpreadsheetID: c.Spreadsheet,
		GoogleSheetName:     c.SheetName,
	})
	if err != nil {
		return err
	}
	export, err := backend.NewFactory(rt.logger).Create(rt.ctx, backendCfg)
	if err != nil {
		return err
	}
	if export.Cleanup != nil {
		defer export.Cleanup()
	}

	cfg := worker.DefaultConfig()
	cfg.Concurrency = c.Concurrency
	w := worker.NewExportWorker(rt.svc.Summaries, export.Writer, cfg)

	if c.Year != 0 || c.Month != 0 {
		p := core.NewPeriod(c.Year, c.Month)
		if err := p.Validate(); err != nil {
			return err
		}
		if err := w.ExportPeriod(rt.ctx, p); err != nil {
			return err
		}
		fmt.Fprintf(rt.out, "exported %s to %s\n", p, c.Target)
		return nil
	}

	n, err := w.ResyncAll(rt.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "exported %d %s to %s\n", n, plural(n, "period"), c.Target)
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
