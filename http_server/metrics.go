package http_server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the conversion counters served on /metrics.
type Metrics struct {
	RowsDecoded      prometheus.Counter
	RowsEncoded      prometheus.Counter
	BytesWritten     *prometheus.CounterVec
	ConversionErrors *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	rowsDecoded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pqbridge_rows_decoded_total",
		Help: "Total rows decoded out of Parquet files",
	})

	rowsEncoded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pqbridge_rows_encoded_total",
		Help: "Total rows encoded into Parquet files",
	})

	bytesWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pqbridge_datastore_bytes_written_total",
		Help: "Total Parquet bytes written to the datastore per namespace",
	}, []string{"namespace"})

	conversionErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pqbridge_conversion_errors_total",
		Help: "Labeled conversion failures per kind",
	}, []string{"kind"})

	reg.MustRegister(rowsDecoded, rowsEncoded, bytesWritten, conversionErrors)

	return &Metrics{
		RowsDecoded:      rowsDecoded,
		RowsEncoded:      rowsEncoded,
		BytesWritten:     bytesWritten,
		ConversionErrors: conversionErrors,
	}
}
