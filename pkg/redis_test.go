package pkg

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/SAP-F-2025/edunexus-service/internal/config"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "reachable", url: "redis://" + mr.Addr()},
		{name: "bad scheme", url: "http://" + mr.Addr(), wantErr: true},
		{name: "nothing listening", url: "redis://127.0.0.1:1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRedisClient(&config.Config{RedisURL: tt.url})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRedisClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if client != nil {
				client.Close()
			}
		})
	}
}
