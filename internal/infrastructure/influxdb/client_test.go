package influxdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/tellhub/internal/infrastructure/config"
)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:1",
		Org:     "home",
		Bucket:  "tellhub",
	})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := &Client{}

	if c.IsConnected() {
		t.Error("zero Client should not be connected")
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() = %v, want ErrNotConnected", err)
	}

	// Writes and flushes on a disconnected client are no-ops.
	c.WriteDeviceStatus(1, "Lamp", true, time.Now())
	c.Flush()

	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
}

func TestDeviceStatusPoint(t *testing.T) {
	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		on   bool
		want int64
	}{
		{"on", true, 1},
		{"off", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := deviceStatusPoint(7, "Porch", tt.on, at)

			if p.Name() != MeasurementDeviceStatus {
				t.Errorf("Name() = %q", p.Name())
			}
			if !p.Time().Equal(at) {
				t.Errorf("Time() = %v, want %v", p.Time(), at)
			}

			tags := map[string]string{}
			for _, tag := range p.TagList() {
				tags[tag.Key] = tag.Value
			}
			if tags["device_id"] != "7" || tags["name"] != "Porch" {
				t.Errorf("tags = %v", tags)
			}

			fields := p.FieldList()
			if len(fields) != 1 || fields[0].Key != "on" {
				t.Fatalf("fields = %v", fields)
			}
			if got, ok := fields[0].Value.(int64); !ok || got != tt.want {
				t.Errorf("on = %#v, want %d", fields[0].Value, tt.want)
			}
		})
	}
}
