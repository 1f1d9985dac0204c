package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "RiffCard/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// MetricPutter is the part of the CloudWatch API the client uses
type MetricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      MetricPutter
	enabled     bool
	environment string
	async       bool
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	client := cloudwatch.NewFromConfig(cfg)
	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)

	return &Client{
		client:      client,
		enabled:     true,
		environment: environment,
		async:       true,
	}, nil
}

// NewClientWith wraps an existing putter; metrics are sent synchronously
func NewClientWith(putter MetricPutter, environment string) *Client {
	return &Client{client: putter, enabled: true, environment: environment}
}

func (m *Client) envDimension() types.Dimension {
	return types.Dimension{
		Name:  aws.String("Environment"),
		Value: aws.String(m.environment),
	}
}

func (m *Client) run(f func(ctx context.Context)) {
	if m.async {
		go f(context.Background())
		return
	}
	f(context.Background())
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if m == nil || !m.enabled {
		return
	}

	m.run(func(ctx context.Context) {
		// Determine if success or error
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}

		dimensions := []types.Dimension{
			{
				Name:  aws.String("Endpoint"),
				Value: aws.String(endpoint),
			},
			m.envDimension(),
		}

		if err := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record %s metric: %v", metricName, err)
		}

		latencyMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "APILatency", latencyMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record APILatency metric: %v", err)
		}
	})
}

// RecordAssembly records how many events a timeline assembly produced
func (m *Client) RecordAssembly(events int, duration time.Duration, success bool) {
	if m == nil || !m.enabled {
		return
	}

	m.run(func(ctx context.Context) {
		dimensions := []types.Dimension{
			{
				Name:  aws.String("Success"),
				Value: aws.String(boolToString(success)),
			},
			m.envDimension(),
		}

		if err := m.putMetric(ctx, "TimelineEvents", float64(events), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record TimelineEvents metric: %v", err)
		}
		durationMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "AssemblyDuration", durationMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record AssemblyDuration metric: %v", err)
		}
	})
}

// RecordExport records a MIDI export
func (m *Client) RecordExport(notes int, bytes int64) {
	if m == nil || !m.enabled {
		return
	}

	m.run(func(ctx context.Context) {
		dimensions := []types.Dimension{m.envDimension()}

		if err := m.putMetric(ctx, "MIDIExports", 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record MIDIExports metric: %v", err)
		}
		if err := m.putMetric(ctx, "MIDIExportNotes", float64(notes), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record MIDIExportNotes metric: %v", err)
		}
		if err := m.putMetric(ctx, "MIDIExportBytes", float64(bytes), types.StandardUnitBytes, dimensions); err != nil {
			log.Printf("Failed to record MIDIExportBytes metric: %v", err)
		}
	})
}

// RecordActiveSessions records the number of live editing sessions
func (m *Client) RecordActiveSessions(n int) {
	if m == nil || !m.enabled {
		return
	}

	m.run(func(ctx context.Context) {
		dimensions := []types.Dimension{m.envDimension()}
		if err := m.putMetric(ctx, "ActiveSessions", float64(n), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record ActiveSessions metric: %v", err)
		}
	})
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	ctx context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
