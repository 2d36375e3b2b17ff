package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "bare date", in: "2024-03-10", want: NewDate(2024, time.March, 10)},
		{name: "rfc3339", in: "2024-03-10T00:00:00Z", want: NewDate(2024, time.March, 10)},
		{name: "rfc1123 gmt", in: "Sun, 10 Mar 2024 00:00:00 GMT", want: NewDate(2024, time.March, 10)},
		{name: "zone kept", in: "2024-03-10T23:30:00-05:00", want: NewDate(2024, time.March, 10)},
		{name: "empty", in: "", want: Date{}},
		{name: "garbage", in: "tomorrow", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2024, time.January, 31)
	b := a.AddDays(1)

	if b != NewDate(2024, time.February, 1) {
		t.Fatalf("AddDays(1) = %v", b)
	}
	if !a.Before(b) || !b.After(a) || a.Compare(a) != 0 {
		t.Errorf("ordering broken between %v and %v", a, b)
	}
}

func TestDate_JSON(t *testing.T) {
	var e Event
	if err := json.Unmarshal([]byte(`{"sn":5,"title":"x","start_date":"2024-03-10","end_date":null}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.StartDate != NewDate(2024, time.March, 10) || !e.EndDate.IsZero() {
		t.Errorf("decoded dates = %v / %v", e.StartDate, e.EndDate)
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"sn":5,"title":"x","description":"","start_date":"2024-03-10","end_date":"","emails":""}`
	if string(out) != want {
		t.Errorf("marshal = %s, want %s", out, want)
	}
}

func TestDraft_RoundTripsEmails(t *testing.T) {
	e := Event{SN: 3, Title: "Standup", Emails: "a@x.io, b@x.io,"}

	d := DraftFrom(e)
	if len(d.Emails) != 2 {
		t.Fatalf("DraftFrom emails = %v", d.Emails)
	}
	if got := d.Payload().Emails; got != "a@x.io,b@x.io" {
		t.Errorf("Payload().Emails = %q", got)
	}
	if d.Event().SN != 0 {
		t.Error("draft event must not carry an identity")
	}
}
