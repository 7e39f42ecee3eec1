package telemetry

import "testing"

func TestProxyAttributes(t *testing.T) {
	attrs := ProxyAttributes(42, "socks5")
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Value.AsInt64() != 42 {
		t.Errorf("AttrProxyID = %v, want 42", attrs[0].Value.AsInt64())
	}
	if attrs[1].Value.AsString() != "socks5" {
		t.Errorf("AttrProxyProto = %v, want socks5", attrs[1].Value.AsString())
	}
}

func TestTaskAttributes(t *testing.T) {
	attrs := TaskAttributes("crawl", true, 10, 2)
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}
	if attrs[0].Value.AsString() != "crawl" {
		t.Errorf("AttrTaskName = %v, want crawl", attrs[0].Value.AsString())
	}
	if !attrs[1].Value.AsBool() {
		t.Error("AttrTaskShared = false, want true")
	}
}

func TestValidationBatchAttributes(t *testing.T) {
	attrs := ValidationBatchAttributes(100, 80, 20)
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Value.AsInt64() != 100 {
		t.Errorf("AttrBatchSize = %v, want 100", attrs[0].Value.AsInt64())
	}
	if attrs[1].Value.AsInt64() != 80 {
		t.Errorf("AttrBatchSuccess = %v, want 80", attrs[1].Value.AsInt64())
	}
	if attrs[2].Value.AsInt64() != 20 {
		t.Errorf("AttrBatchFailed = %v, want 20", attrs[2].Value.AsInt64())
	}
}
