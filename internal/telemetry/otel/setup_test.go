package otel

import (
	"context"
	"testing"
)

func TestNewProvidersEmptyEndpoint(t *testing.T) {
	providers, err := NewProviders(context.Background(), "", "test-service", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
		t.Fatal("empty endpoint should still return usable no-op providers")
	}
	if err := providers.Shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown: %v", err)
	}
}

func TestDialTarget(t *testing.T) {
	tests := []struct {
		endpoint      string
		insecure      bool
		wantTarget    string
		wantPlaintext bool
		wantErr       bool
	}{
		{endpoint: "http://localhost:4317", wantTarget: "localhost:4317", wantPlaintext: true},
		{endpoint: "https://collector:4317/v1/traces", wantTarget: "collector:4317", wantPlaintext: false},
		{endpoint: "https://collector:4317", insecure: true, wantTarget: "collector:4317", wantPlaintext: true},
		{endpoint: "collector:4317", wantTarget: "collector:4317", wantPlaintext: true},
		{endpoint: "http://", wantErr: true},
	}
	for _, tt := range tests {
		target, plaintext, err := dialTarget(tt.endpoint, tt.insecure)
		if tt.wantErr {
			if err == nil {
				t.Errorf("dialTarget(%q): want error, got target %q", tt.endpoint, target)
			}
			continue
		}
		if err != nil {
			t.Errorf("dialTarget(%q): %v", tt.endpoint, err)
			continue
		}
		if target != tt.wantTarget || plaintext != tt.wantPlaintext {
			t.Errorf("dialTarget(%q) = (%q, %v), want (%q, %v)", tt.endpoint, target, plaintext, tt.wantTarget, tt.wantPlaintext)
		}
	}
}
