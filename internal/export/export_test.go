package export

import (
	"bytes"
	"strings"
	"testing"

	"proxypool/internal/store"
)

func sampleProxies() []store.Proxy {
	country := "US"
	anonymity := "elite"
	speed := 0.42
	return []store.Proxy{
		{IP: "1.2.3.4", Port: 8080, Protocol: "http", Country: &country, Anonymity: &anonymity, Speed: &speed, SuccessCount: 5, Status: store.StatusSuccess},
		{IP: "5.6.7.8", Port: 1080, Protocol: "socks5", Status: store.StatusPending},
	}
}

func TestWriteActiveCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteActiveCSV(&buf, sampleProxies()); err != nil {
		t.Fatalf("WriteActiveCSV() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ip,port,protocol") {
		t.Errorf("missing header row: %q", out)
	}
	if !strings.Contains(out, "1.2.3.4") || !strings.Contains(out, "5.6.7.8") {
		t.Errorf("missing expected rows: %q", out)
	}
}

func TestWriteActiveCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteActiveCSV(&buf, nil); err != nil {
		t.Fatalf("WriteActiveCSV() error = %v", err)
	}
	if !strings.Contains(buf.String(), "ip,port,protocol") {
		t.Errorf("expected header-only output, got %q", buf.String())
	}
}

func TestWriteActiveXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteActiveXLSX(&buf, sampleProxies()); err != nil {
		t.Fatalf("WriteActiveXLSX() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty xlsx payload")
	}
	// XLSX files are zip archives and start with the PK signature.
	if sig := buf.Bytes()[:2]; string(sig) != "PK" {
		t.Errorf("expected PK zip signature, got %q", sig)
	}
}

func TestWriteStatsPDF(t *testing.T) {
	var buf bytes.Buffer
	stats := store.Stats{Total: 10, Active: 6, Pending: 3, Inactive: 1, DistinctProtocols: 2, DistinctCountries: 2, AvgSpeed: 0.5}
	if err := WriteStatsPDF(&buf, stats, sampleProxies()); err != nil {
		t.Fatalf("WriteStatsPDF() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty pdf payload")
	}
	if sig := buf.Bytes()[:4]; string(sig) != "%PDF" {
		t.Errorf("expected %%PDF signature, got %q", sig)
	}
}

func TestWriteStatsPDF_NoProxies(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStatsPDF(&buf, store.Stats{}, nil); err != nil {
		t.Fatalf("WriteStatsPDF() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty pdf payload even with no proxies")
	}
}
