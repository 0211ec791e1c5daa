package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type CloudWatchCollector struct {
	cw         *cloudwatch.Client
	namespace  string
	dimensions []types.Dimension
	timeout    time.Duration
}

func NewCloudWatchCollector(cw *cloudwatch.Client, namespace string, dimensions map[string]string) *CloudWatchCollector {
	dims := make([]types.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		k, v := k, v
		dims = append(dims, types.Dimension{Name: &k, Value: &v})
	}
	return &CloudWatchCollector{
		cw:         cw,
		namespace:  namespace,
		dimensions: dims,
		timeout:    10 * time.Second, // per-call timeout
	}
}

var _ Collector = (*CloudWatchCollector)(nil)

func (c *CloudWatchCollector) MessageProcessed(timeMs int64) {
	one := 1.0
	lat := float64(timeMs)
	c.put([]types.MetricDatum{
		c.datum("MessageProcessed", types.StandardUnitCount, &one),
		c.datum("PipelineLatency", types.StandardUnitMilliseconds, &lat),
	})
}

func (c *CloudWatchCollector) MessageError() {
	one := 1.0
	c.put([]types.MetricDatum{
		c.datum("MessageError", types.StandardUnitCount, &one),
	})
}

func (c *CloudWatchCollector) ExtractionFallback() {
	one := 1.0
	c.put([]types.MetricDatum{
		c.datum("ExtractionFallback", types.StandardUnitCount, &one),
	})
}

func (c *CloudWatchCollector) datum(name string, unit types.StandardUnit, value *float64) types.MetricDatum {
	now := time.Now()
	return types.MetricDatum{
		MetricName: &name,
		Timestamp:  &now,
		Dimensions: c.dimensions,
		Unit:       unit,
		Value:      value,
	}
}

func (c *CloudWatchCollector) put(data []types.MetricDatum) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	_, err := c.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &c.namespace,
		MetricData: data,
	})
	if err != nil {
		log.Printf("failed to send CloudWatch metrics: %v", err)
	}
}
