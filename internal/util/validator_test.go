package util

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidatePrice_Valid(t *testing.T) {
	testCases := []string{"0", "0.01", "1", "100.5", "99999999.99"}

	for _, s := range testCases {
		if err := ValidatePrice(decimal.RequireFromString(s)); err != nil {
			t.Errorf("ValidatePrice(%s) error = %v, want nil", s, err)
		}
	}
}

func TestValidatePrice_Invalid(t *testing.T) {
	testCases := []string{"-0.01", "-100", "100000000", "1.005"}

	for _, s := range testCases {
		if err := ValidatePrice(decimal.RequireFromString(s)); err == nil {
			t.Errorf("ValidatePrice(%s) error = nil, want error", s)
		}
	}
}

func TestValidateStock(t *testing.T) {
	if err := ValidateStock(0); err != nil {
		t.Errorf("ValidateStock(0) error = %v", err)
	}
	if err := ValidateStock(-1); err == nil {
		t.Error("ValidateStock(-1) error = nil, want error")
	}
}

func TestParseDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		if _, err := ParseDate(date); err != nil {
			t.Errorf("ParseDate(%q) error = %v, want nil", date, err)
		}
	}
}

func TestParseDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
	}

	for _, date := range testCases {
		if _, err := ParseDate(date); err == nil {
			t.Errorf("ParseDate(%q) error = nil, want error", date)
		}
	}
}

func TestParseDateTime(t *testing.T) {
	ts, err := ParseDateTime("2026-03-04T10:20:30Z")
	if err != nil {
		t.Fatalf("RFC3339: %v", err)
	}
	if ts.Hour() != 10 || ts.Minute() != 20 {
		t.Errorf("unexpected time %v", ts)
	}

	d, err := ParseDateTime("2026-03-04")
	if err != nil {
		t.Fatalf("date only: %v", err)
	}
	if d.Day() != 4 || d.Hour() != 0 {
		t.Errorf("unexpected date %v", d)
	}

	if _, err := ParseDateTime("yesterday"); err == nil {
		t.Error("ParseDateTime(yesterday) error = nil, want error")
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("name", "Widget", 20); err != nil {
		t.Errorf("ValidateName error = %v", err)
	}
	if err := ValidateName("name", "   ", 20); err == nil {
		t.Error("blank name accepted")
	}
	if err := ValidateName("name", strings.Repeat("x", 21), 20); err == nil {
		t.Error("long name accepted")
	}
	// runes, not bytes
	if err := ValidateName("name", "咖啡豆", 3); err != nil {
		t.Errorf("multi-byte name rejected: %v", err)
	}
}
