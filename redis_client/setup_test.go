package redis_client

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leeforge/picture/logging"
)

func miniredisConfig(t *testing.T) (*miniredis.Miniredis, Config) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	host, port, err := net.SplitHostPort(mr.Addr())
	if err != nil {
		t.Fatalf("invalid miniredis addr %q: %v", mr.Addr(), err)
	}
	return mr, Config{Host: host, Port: port, DialTimeout: time.Second}
}

func TestNewRedis_ConnectionSuccess(t *testing.T) {
	mr, config := miniredisConfig(t)
	mr.RequireAuth("super-secret")
	config.Password = "super-secret"

	var buf bytes.Buffer
	logger := logging.FromZap(zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&buf), zapcore.InfoLevel)))

	client, err := NewRedis(context.Background(), config, logger)
	if err != nil {
		t.Fatalf("NewRedis() failed: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Errorf("stored value = %q, want v", got)
	}

	if strings.Contains(buf.String(), "super-secret") {
		t.Fatalf("log leaks password: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "[REDACTED]") {
		t.Fatalf("log should contain redaction marker, got: %s", buf.String())
	}
}

func TestNewRedis_WrongPassword(t *testing.T) {
	mr, config := miniredisConfig(t)
	mr.RequireAuth("super-secret")
	config.Password = "wrong"

	if _, err := NewRedis(context.Background(), config, nil); err == nil {
		t.Fatal("NewRedis() should fail with a wrong password")
	}
}

func TestNewRedis_ConnectionFailure_UnreachablePort(t *testing.T) {
	config := Config{Host: "127.0.0.1", Port: "1", DialTimeout: time.Second}

	if _, err := NewRedis(context.Background(), config, nil); err == nil {
		t.Fatal("NewRedis() should fail when port is unreachable")
	}
}
