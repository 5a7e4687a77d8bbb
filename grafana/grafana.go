package grafana

import (
	"context"
	"net/http"

	"github.com/K-Phoen/grabana"
	"github.com/K-Phoen/grabana/axis"
	"github.com/K-Phoen/grabana/graph"
	"github.com/K-Phoen/grabana/row"
	"github.com/K-Phoen/grabana/singlestat"
	"github.com/K-Phoen/grabana/table"
	"github.com/K-Phoen/grabana/target/prometheus"
	"github.com/K-Phoen/grabana/variable/interval"
)

var (
	folderName    = "Multicube"
	dashboardName = "Multicube Executor"
)

// DashboardCreator multicube grafana dashboard creator
type DashboardCreator struct {
	cli        *grabana.Client
	dataSource string
}

// NewDashboardCreator returns a dashboard creator
func NewDashboardCreator(grafana, apiKey, dataSource string) *DashboardCreator {
	return &DashboardCreator{
		cli:        grabana.NewClient(http.DefaultClient, grafana, apiKey),
		dataSource: dataSource,
	}
}

// Create create dashboard
func (c *DashboardCreator) Create(ctx context.Context) error {
	folder, err := c.createFolder(ctx)
	if err != nil {
		return err
	}

	return c.createExecutorDashboard(ctx, folder)
}

func (c *DashboardCreator) createFolder(ctx context.Context) (*grabana.Folder, error) {
	folder, err := c.cli.GetFolderByTitle(ctx, folderName)
	if err != nil && err != grabana.ErrFolderNotFound {
		return nil, err
	}

	if folder == nil {
		folder, err = c.cli.CreateFolder(ctx, folderName)
		if err != nil {
			return nil, err
		}
	}

	return folder, nil
}

func (c *DashboardCreator) createExecutorDashboard(ctx context.Context, folder *grabana.Folder) error {
	db := grabana.NewDashboardBuilder(dashboardName,
		grabana.AutoRefresh("5s"),
		grabana.Tags([]string{"generated"}),
		grabana.VariableAsInterval(
			"interval",
			interval.Values([]string{"30s", "1m", "5m", "10m", "30m", "1h", "6h", "12h"}),
		),
		c.overviewRow(),
		c.batchRow(),
		c.durationRow(),
		c.storeRow())

	_, err := c.cli.UpsertDashboard(ctx, folder, db)
	return err
}

func (c *DashboardCreator) overviewRow() grabana.DashboardBuilderOption {
	return grabana.Row(
		"Overview status",
		row.WithSingleStat(
			"Scheduled operations",
			singlestat.Height("200px"),
			singlestat.Span(4),
			singlestat.WithPrometheusTarget(
				"sum(multicube_executor_scheduled_operations)"),
		),
		row.WithSingleStat(
			"Rounds",
			singlestat.Height("200px"),
			singlestat.Span(4),
			singlestat.WithPrometheusTarget(
				"sum(rate(multicube_executor_round_total[$interval]))"),
		),
		row.WithSingleStat(
			"Batches",
			singlestat.Height("200px"),
			singlestat.Span(4),
			singlestat.WithPrometheusTarget(
				"sum(rate(multicube_executor_batch_total[$interval]))"),
		),
	)
}

func (c *DashboardCreator) batchRow() grabana.DashboardBuilderOption {
	return grabana.Row(
		"Batching status",
		c.withGraph("Batches sent", 4,
			"sum(rate(multicube_executor_batch_total[$interval])) by (kind)",
			"{{ kind }}"),
		c.withGraph("Steps executed", 4,
			"sum(rate(multicube_executor_step_total[$interval])) by (kind)",
			"{{ kind }}"),
		c.withGraph("99% steps per batch", 4,
			`histogram_quantile(0.99, sum(rate(multicube_executor_batch_steps_bucket[$interval])) by (le, instance))`,
			"{{ instance }}", axis.Min(0)),
	)
}

func (c *DashboardCreator) durationRow() grabana.DashboardBuilderOption {
	return grabana.Row(
		"Execution status",
		c.withGraph("50% execute time", 4,
			`histogram_quantile(0.50, sum(rate(multicube_executor_execute_duration_seconds_bucket[$interval])) by (le, instance))`,
			"{{ instance }}", axis.Unit("s"), axis.Min(0)),
		c.withGraph("99% execute time", 4,
			`histogram_quantile(0.99, sum(rate(multicube_executor_execute_duration_seconds_bucket[$interval])) by (le, instance))`,
			"{{ instance }}", axis.Unit("s"), axis.Min(0)),
		c.withGraph("99.99% execute time", 4,
			`histogram_quantile(0.9999, sum(rate(multicube_executor_execute_duration_seconds_bucket[$interval])) by (le, instance))`,
			"{{ instance }}", axis.Unit("s"), axis.Min(0)),
	)
}

func (c *DashboardCreator) storeRow() grabana.DashboardBuilderOption {
	return grabana.Row(
		"Store status",
		c.withGraph("Store commands", 6,
			"sum(rate(multicube_store_command_total[$interval])) by (mode)",
			"{{ mode }}"),
		c.withTable("Store commands per node", 6,
			"sum(multicube_store_command_total) by (instance)",
			"{{ instance }}"),
		c.withGraph("Storage bytes", 6,
			"sum(multicube_storage_bytes) by (type)",
			"{{ type }}"),
		c.withGraph("Applied write batches", 6,
			"sum(multicube_storage_applied_batches) by (instance)",
			"{{ instance }}"),
	)
}

func (c *DashboardCreator) withGraph(title string, span float32, pql string, legend string, opts ...axis.Option) row.Option {
	return row.WithGraph(
		title,
		graph.Span(span),
		graph.Height("400px"),
		graph.DataSource(c.dataSource),
		graph.WithPrometheusTarget(
			pql,
			prometheus.Legend(legend),
		),
		graph.LeftYAxis(opts...),
	)
}

func (c *DashboardCreator) withTable(title string, span float32, pql string, legend string) row.Option {
	return row.WithTable(
		title,
		table.Span(span),
		table.Height("400px"),
		table.DataSource(c.dataSource),
		table.WithPrometheusTarget(
			pql,
			prometheus.Legend(legend)),
		table.AsTimeSeriesAggregations([]table.Aggregation{
			{Label: "Current", Type: table.Current},
			{Label: "Max", Type: table.Max},
			{Label: "Min", Type: table.Min},
		}),
	)
}
