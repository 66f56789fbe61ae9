package gcp

import (
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/recommender/apiv1/recommenderpb"
	"google.golang.org/genproto/googleapis/type/money"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/cloudmesh/cloudmesh-go/finops"
)

func TestBuildCostSQL(t *testing.T) {
	sql, err := buildCostSQL("`proj.billing.export`", "2025-01-01", "2025-02-01", "DAILY", []string{"service", "project"})
	if err != nil {
		t.Fatalf("buildCostSQL: %v", err)
	}
	for _, want := range []string{
		"service.description AS dim0",
		"project.id AS dim1",
		"SUM(cost) AS total_cost",
		"TIMESTAMP(@start_date)",
		"GROUP BY period, dim0, dim1",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("sql missing %q:\n%s", want, sql)
		}
	}
}

func TestBuildCostSQLMonthlyBuckets(t *testing.T) {
	sql, err := buildCostSQL("`t`", "2025-01-01", "2025-12-31", "MONTHLY", nil)
	if err != nil {
		t.Fatalf("buildCostSQL: %v", err)
	}
	if !strings.Contains(sql, "'%Y-%m-01'") {
		t.Fatalf("sql does not bucket by month:\n%s", sql)
	}
}

func TestBuildCostSQLUnknownDimension(t *testing.T) {
	if _, err := buildCostSQL("`t`", "2025-01-01", "2025-02-01", "DAILY", []string{"nonsense"}); err == nil {
		t.Fatal("unknown dimension accepted, want error")
	}
}

func TestBuildForecastSQLShapes(t *testing.T) {
	model := modelFQN("proj", "billing")
	if model != "`proj.billing.cloudmesh_cost_forecast`" {
		t.Fatalf("model = %q", model)
	}

	train := buildForecastModelSQL(model, "`t`", 90)
	if !strings.Contains(train, "ARIMA_PLUS") || !strings.Contains(train, "INTERVAL 90 DAY") {
		t.Fatalf("training sql wrong:\n%s", train)
	}

	forecast := buildForecastSQL(model, 30)
	if !strings.Contains(forecast, "ML.FORECAST") || !strings.Contains(forecast, "30 AS horizon") {
		t.Fatalf("forecast sql wrong:\n%s", forecast)
	}

	anomalies := buildAnomalySQL(model, "`t`", 0.9)
	if !strings.Contains(anomalies, "ML.DETECT_ANOMALIES") || !strings.Contains(anomalies, "0.9 AS anomaly_prob_threshold") {
		t.Fatalf("anomaly sql wrong:\n%s", anomalies)
	}
}

func TestExportTablePrecondition(t *testing.T) {
	p := &Provider{opts: Options{ProjectID: "proj"}}
	_, err := p.exportTable("GetCostData")

	var precondition *finops.PreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	if precondition.Remedy == "" {
		t.Fatal("precondition error has no remedy")
	}

	p.opts.BigQueryDataset = "billing"
	p.opts.BigQueryTable = "export"
	table, err := p.exportTable("GetCostData")
	if err != nil || table != "`proj.billing.export`" {
		t.Fatalf("table = %q, err = %v", table, err)
	}
}

func TestBillingAccountPrecondition(t *testing.T) {
	p := &Provider{opts: Options{ProjectID: "proj"}}
	if _, err := p.billingAccount("", "ListBudgets"); err == nil {
		t.Fatal("missing billing account accepted, want error")
	}

	parent, err := p.billingAccount("012345-567890-ABCDEF", "ListBudgets")
	if err != nil || parent != "billingAccounts/012345-567890-ABCDEF" {
		t.Fatalf("parent = %q, err = %v", parent, err)
	}
}

func TestMoneyConversions(t *testing.T) {
	m := moneyFromFloat(1234.56, "USD")
	if m.Units != 1234 || m.Nanos != 560000000 {
		t.Fatalf("money = %+v, want 1234 units and 560000000 nanos", m)
	}
	if got := floatFromMoney(m); got != 1234.56 {
		t.Fatalf("round trip = %v, want 1234.56", got)
	}
}

func TestMonthlySavings(t *testing.T) {
	rec := &recommenderpb.Recommendation{
		PrimaryImpact: &recommenderpb.Impact{
			Category: recommenderpb.Impact_COST,
			Projection: &recommenderpb.Impact_CostProjection{
				CostProjection: &recommenderpb.CostProjection{
					Cost:     &money.Money{Units: -300},
					Duration: &durationpb.Duration{Seconds: 90 * 24 * 3600},
				},
			},
		},
	}
	if got := monthlySavings(rec); got != 100 {
		t.Fatalf("monthly savings = %v, want 100", got)
	}

	if got := monthlySavings(&recommenderpb.Recommendation{}); got != 0 {
		t.Fatalf("savings without projection = %v, want 0", got)
	}
}
