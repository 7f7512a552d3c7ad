// Package database publishes extracted figure series to InfluxDB.
package database

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"

	"github.com/nedved1/rpma/internal/config"
	"github.com/nedved1/rpma/internal/figure"
	"github.com/nedved1/rpma/internal/logging"
)

type SeriesDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewSeriesDBClient(cfg config.DatabaseConfig) (*SeriesDBClient, error) {
	logger := logging.GetLogger()

	client := influxdb2.NewClient(cfg.Host, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		logger.WithField("host", cfg.Host).WithError(err).Error("Failed to connect to InfluxDB")
		return nil, err
	}

	if health.Status != "pass" {
		logger.WithFields(logrus.Fields{
			"host":    cfg.Host,
			"status":  health.Status,
			"message": health.Message,
		}).Error("InfluxDB health check failed")
		return nil, fmt.Errorf("influxdb health check failed: %s", health.Status)
	}

	writeAPI := client.WriteAPIBlocking(cfg.Org, cfg.Bucket)

	logger.WithFields(logrus.Fields{
		"host":   cfg.Host,
		"bucket": cfg.Bucket,
		"org":    cfg.Org,
	}).Info("Connected to InfluxDB")

	return &SeriesDBClient{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.Bucket,
		org:      cfg.Org,
	}, nil
}

// WriteFigureSeries writes every extracted point of a figure as a
// figure_series measurement, tagged with the figure key and series label.
func (c *SeriesDBClient) WriteFigureSeries(f *figure.Figure) error {
	ctx := context.Background()
	now := time.Now()

	var points []*write.Point
	for _, series := range f.Series {
		for _, p := range series.Points {
			point := influxdb2.NewPoint("figure_series",
				map[string]string{
					"figure":   f.Output.Key,
					"label":    series.Label,
					"x_column": f.Output.X,
					"y_column": f.Output.Y,
				},
				map[string]interface{}{
					"x": p.X,
					"y": p.Y,
				},
				now)
			points = append(points, point)
		}
	}

	if len(points) > 0 {
		if err := c.writeAPI.WritePoint(ctx, points...); err != nil {
			return fmt.Errorf("failed to write series points: %w", err)
		}
	}

	return nil
}

func (c *SeriesDBClient) Close() {
	c.client.Close()
}
