package gcp

import (
	"fmt"
	"strings"
)

// dimensionColumns maps portable dimension names onto billing export
// columns.
var dimensionColumns = map[string]string{
	"service":  "service.description",
	"sku":      "sku.description",
	"project":  "project.id",
	"location": "location.location",
	"region":   "location.region",
}

func dimensionColumn(dim string) (string, error) {
	if col, ok := dimensionColumns[strings.ToLower(dim)]; ok {
		return col, nil
	}
	return "", fmt.Errorf("unknown gcp cost dimension %q", dim)
}

// periodExpr buckets usage timestamps by day or month.
func periodExpr(granularity string) string {
	if strings.EqualFold(granularity, "monthly") {
		return "FORMAT_DATE('%Y-%m-01', DATE(usage_start_time))"
	}
	return "FORMAT_DATE('%Y-%m-%d', DATE(usage_start_time))"
}

// buildCostSQL selects summed costs per period bucket from the billing
// export, optionally grouped by portable dimensions.
func buildCostSQL(table string, start, end, granularity string, groupBy []string) (string, error) {
	selects := []string{
		fmt.Sprintf("%s AS period", periodExpr(granularity)),
		"SUM(cost) AS total_cost",
		"ANY_VALUE(currency) AS currency",
	}
	groups := []string{"period"}
	for i, dim := range groupBy {
		col, err := dimensionColumn(dim)
		if err != nil {
			return "", err
		}
		alias := fmt.Sprintf("dim%d", i)
		selects = append(selects, fmt.Sprintf("%s AS %s", col, alias))
		groups = append(groups, alias)
	}

	return fmt.Sprintf(`SELECT %s
FROM %s
WHERE usage_start_time >= TIMESTAMP(@start_date)
  AND usage_start_time < TIMESTAMP(@end_date)
GROUP BY %s
ORDER BY period`,
		strings.Join(selects, ", "), table, strings.Join(groups, ", ")), nil
}

// buildServiceCostSQL selects daily costs for a single service label.
func buildServiceCostSQL(table string) string {
	return fmt.Sprintf(`SELECT FORMAT_DATE('%%Y-%%m-%%d', DATE(usage_start_time)) AS period,
SUM(cost) AS total_cost,
ANY_VALUE(currency) AS currency
FROM %s
WHERE usage_start_time >= TIMESTAMP(@start_date)
  AND usage_start_time < TIMESTAMP(@end_date)
  AND service.description = @service
GROUP BY period
ORDER BY period`, table)
}

// buildCommitmentCostSQL selects daily committed use discount charges.
func buildCommitmentCostSQL(table string) string {
	return fmt.Sprintf(`SELECT FORMAT_DATE('%%Y-%%m-%%d', DATE(usage_start_time)) AS period,
SUM(cost) AS total_cost,
ANY_VALUE(currency) AS currency
FROM %s
WHERE usage_start_time >= TIMESTAMP(@start_date)
  AND usage_start_time < TIMESTAMP(@end_date)
  AND sku.description LIKE '%%Commitment%%'
GROUP BY period
ORDER BY period`, table)
}

// buildSustainedUseSQL sums sustained use discount credits per day.
func buildSustainedUseSQL(table string) string {
	return fmt.Sprintf(`SELECT FORMAT_DATE('%%Y-%%m-%%d', DATE(usage_start_time)) AS period,
SUM(IFNULL((SELECT SUM(c.amount) FROM UNNEST(credits) c WHERE c.type = 'SUSTAINED_USAGE_DISCOUNT'), 0)) AS total_cost,
ANY_VALUE(currency) AS currency
FROM %s
WHERE usage_start_time >= TIMESTAMP(@start_date)
  AND usage_start_time < TIMESTAMP(@end_date)
GROUP BY period
ORDER BY period`, table)
}

// forecastModelName is the ARIMA model maintained in the export dataset.
const forecastModelName = "cloudmesh_cost_forecast"

func modelFQN(projectID, dataset string) string {
	return fmt.Sprintf("`%s.%s.%s`", projectID, dataset, forecastModelName)
}

// buildForecastModelSQL trains an ARIMA_PLUS model on recent daily costs.
func buildForecastModelSQL(model, table string, lookbackDays int) string {
	return fmt.Sprintf(`CREATE OR REPLACE MODEL %s
OPTIONS(model_type = 'ARIMA_PLUS',
        time_series_timestamp_col = 'usage_day',
        time_series_data_col = 'daily_cost') AS
SELECT TIMESTAMP(DATE(usage_start_time)) AS usage_day,
       SUM(cost) AS daily_cost
FROM %s
WHERE usage_start_time >= TIMESTAMP_SUB(CURRENT_TIMESTAMP(), INTERVAL %d DAY)
GROUP BY usage_day`, model, table, lookbackDays)
}

// buildForecastSQL reads forecast rows with prediction intervals.
func buildForecastSQL(model string, horizonDays int) string {
	return fmt.Sprintf(`SELECT FORMAT_DATE('%%Y-%%m-%%d', DATE(forecast_timestamp)) AS period,
forecast_value,
prediction_interval_lower_bound,
prediction_interval_upper_bound
FROM ML.FORECAST(MODEL %s, STRUCT(%d AS horizon, 0.9 AS confidence_level))
ORDER BY period`, model, horizonDays)
}

// buildAnomalySQL flags days the model considers anomalous.
func buildAnomalySQL(model, table string, probabilityThreshold float64) string {
	return fmt.Sprintf(`SELECT FORMAT_DATE('%%Y-%%m-%%d', DATE(usage_day)) AS period,
daily_cost,
is_anomaly,
anomaly_probability
FROM ML.DETECT_ANOMALIES(
  MODEL %s,
  STRUCT(%g AS anomaly_prob_threshold),
  (SELECT TIMESTAMP(DATE(usage_start_time)) AS usage_day, SUM(cost) AS daily_cost
   FROM %s
   WHERE usage_start_time >= TIMESTAMP(@start_date)
     AND usage_start_time < TIMESTAMP(@end_date)
   GROUP BY usage_day))
WHERE is_anomaly
ORDER BY period`, model, probabilityThreshold, table)
}
