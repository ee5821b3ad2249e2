package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/pkg/errors"

	"IotMonitor.api/internal/models"
)

const (
	measurementName = "measures"
	payloadField    = "payload"
	fieldPrefix     = "measures."

	// field key suffixes keep each key to one InfluxDB type
	boolSuffix   = ".bool"
	stringSuffix = ".str"
)

// InfluxDBRepository writes one point per measurement record. Scalar leaves of
// measures become fields so they can be graphed; the verbatim document is kept
// in the payload field. Points are stamped with the receive time, never the
// device timestamp, so identical uploads stay separate points.
type InfluxDBRepository struct {
	client influxdb2.Client
	org    string
	bucket string
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewInfluxDBRepository creates a new InfluxDBRepository.
func NewInfluxDBRepository(url, token, org, bucket string) *InfluxDBRepository {
	return &InfluxDBRepository{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
		now:    time.Now,
	}
}

// EnsureBucket creates the configured bucket in the configured org when it
// does not exist yet.
func (r *InfluxDBRepository) EnsureBucket(ctx context.Context) error {
	exists, err := r.BucketExists(ctx, r.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.CreateBucket(ctx, r.bucket)
}

// BucketExists checks if a bucket exists in InfluxDB.
func (r *InfluxDBRepository) BucketExists(ctx context.Context, name string) (bool, error) {
	_, err := r.client.BucketsAPI().FindBucketByName(ctx, name)
	if err != nil {
		if strings.HasSuffix(err.Error(), "not found") {
			return false, nil
		}
		return false, errors.Wrap(err, "error checking bucket existence")
	}
	return true, nil
}

// CreateBucket creates a bucket with infinite retention in the configured org.
func (r *InfluxDBRepository) CreateBucket(ctx context.Context, name string) error {
	org, err := r.client.OrganizationsAPI().FindOrganizationByName(ctx, r.org)
	if err != nil {
		return errors.Wrapf(err, "error finding organization %q", r.org)
	}
	if _, err := r.client.BucketsAPI().CreateBucketWithName(ctx, org, name); err != nil {
		return errors.Wrapf(err, "error creating bucket %q", name)
	}
	return nil
}

// Ping checks the InfluxDB health endpoint.
func (r *InfluxDBRepository) Ping(ctx context.Context) error {
	health, err := r.client.Health(ctx)
	if err != nil {
		return errors.Wrap(err, "connect to InfluxDB")
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("InfluxDB health check failed: %s", msg)
	}
	return nil
}

func (r *InfluxDBRepository) InsertMeasurement(ctx context.Context, doc models.Document) error {
	p, err := r.pointFor(doc)
	if err != nil {
		return err
	}
	writeAPI := r.client.WriteAPIBlocking(r.org, r.bucket)
	if err := writeAPI.WritePoint(ctx, p); err != nil {
		return errors.Wrap(err, "error writing to InfluxDB")
	}
	return nil
}

func (r *InfluxDBRepository) pointFor(doc models.Document) (*write.Point, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode measurement payload")
	}

	fields := map[string]interface{}{payloadField: string(payload)}
	if measures, ok := doc.Measures(); ok {
		flattenMeasures(fieldPrefix, measures, fields)
	}

	tags := map[string]string{}
	if id := doc.DeviceID(); id != "" {
		tags["device_id"] = id
	}

	return influxdb2.NewPoint(measurementName, tags, fields, r.pointTime()), nil
}

// pointTime returns the receive time, bumped past the previous point so two
// writes never share a timestamp.
func (r *InfluxDBRepository) pointTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	if !ts.After(r.last) {
		ts = r.last.Add(time.Nanosecond)
	}
	r.last = ts
	return ts
}

func flattenMeasures(prefix string, in map[string]any, out map[string]interface{}) {
	for k, v := range in {
		key := prefix + k
		switch val := v.(type) {
		case map[string]any:
			flattenMeasures(key+".", val, out)
		case float64:
			out[key] = val
		case float32:
			out[key] = float64(val)
		case int:
			out[key] = float64(val)
		case int64:
			out[key] = float64(val)
		case json.Number:
			if f, err := val.Float64(); err == nil {
				out[key] = f
			}
		case bool:
			out[key+boolSuffix] = val
		case string:
			out[key+stringSuffix] = val
		}
	}
}

// FindMeasurements reads back the payload field of the newest points.
func (r *InfluxDBRepository) FindMeasurements(ctx context.Context, q models.HistoryQuery) ([]models.Record, error) {
	result, err := r.client.QueryAPI(r.org).Query(ctx, historyFlux(r.bucket, q))
	if err != nil {
		return nil, errors.Wrap(err, "error querying InfluxDB")
	}
	defer result.Close()

	records := make([]models.Record, 0, q.Limit)
	for result.Next() {
		record := result.Record()
		raw, ok := record.Value().(string)
		if !ok {
			continue
		}
		var doc models.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, errors.Wrap(err, "decode stored payload")
		}
		records = append(records, models.Record{Time: record.Time().UTC(), Document: doc})
	}
	if result.Err() != nil {
		return nil, errors.Wrap(result.Err(), "query error")
	}
	return records, nil
}

func historyFlux(bucket string, q models.HistoryQuery) string {
	start := "0"
	if !q.From.IsZero() {
		start = q.From.UTC().Format(time.RFC3339Nano)
	}
	stop := "now()"
	if !q.To.IsZero() {
		// range stop is exclusive
		stop = q.To.UTC().Add(time.Nanosecond).Format(time.RFC3339Nano)
	}

	return fmt.Sprintf(`from(bucket: %q)
	|> range(start: %s, stop: %s)
	|> filter(fn: (r) => r["_measurement"] == %q and r["_field"] == %q)
	|> group()
	|> sort(columns: ["_time"], desc: true)
	|> limit(n: %d)`, bucket, start, stop, measurementName, payloadField, q.Limit)
}

func (r *InfluxDBRepository) Close(context.Context) error {
	r.client.Close()
	return nil
}
