package senml

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantErr     bool
		wantEntries int
	}{
		{
			name:        "plain record",
			payload:     `{"bn":"aircontrol/b1/2/201/pollutants","bt":1700000000,"e":[{"n":"PM2.5","u":"ug/m3","v":12.5}]}`,
			wantEntries: 1,
		},
		{
			name:        "double encoded record",
			payload:     `"{\"bn\":\"x\",\"bt\":1,\"e\":[{\"n\":\"O3\",\"v\":80},{\"n\":\"NO2\",\"v\":30}]}"`,
			wantEntries: 2,
		},
		{name: "not json", payload: `hello`, wantErr: true},
		{name: "missing entries", payload: `{"bn":"x","bt":1}`, wantErr: true},
		{name: "string holding garbage", payload: `"not a record"`, wantErr: true},
		{name: "entries wrong type", payload: `{"bn":"x","e":"PM10"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode([]byte(tt.payload))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("Decode() error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(m.Entries) != tt.wantEntries {
				t.Errorf("entries = %d, want %d", len(m.Entries), tt.wantEntries)
			}
		})
	}
}

func TestEntryFloat(t *testing.T) {
	if v, ok := (Entry{Value: 4.5}).Float(); !ok || v != 4.5 {
		t.Errorf("Float() = %v, %v", v, ok)
	}
	if v, ok := (Entry{Value: 3}).Float(); !ok || v != 3 {
		t.Errorf("Float() int = %v, %v", v, ok)
	}
	if _, ok := (Entry{Value: "Open"}).Float(); ok {
		t.Error("Float() on string should fail")
	}
	if _, ok := (Entry{}).Float(); ok {
		t.Error("Float() on nil should fail")
	}
}

func TestNewEncodeTime(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	m := New("aircontrol/b1/2/201/windows", at, Entry{Name: "windows", Unit: "state", Value: "Closed"})

	data, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	for _, want := range []string{`"bn":"aircontrol/b1/2/201/windows"`, `"n":"windows"`, `"v":"Closed"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("encoded %s missing %s", data, want)
		}
	}
	if !m.Time().Equal(at) {
		t.Errorf("Time() = %v, want %v", m.Time(), at)
	}
	if !(Message{}).Time().IsZero() {
		t.Error("zero base time should give zero Time")
	}
}
