package alidns

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
)

const testSecret = "testsecret"

// verifySignature recomputes the request signature server-side and
// fails the test on a mismatch.
func verifySignature(t *testing.T, query url.Values) {
	t.Helper()
	got := query.Get("Signature")
	if got == "" {
		t.Fatal("request is missing the Signature parameter")
	}
	clean := url.Values{}
	for k, vs := range query {
		if k == "Signature" {
			continue
		}
		for _, v := range vs {
			clean.Add(k, v)
		}
	}
	if want := sign(http.MethodGet, testSecret, clean); got != want {
		t.Fatalf("signature mismatch: got %q, want %q", got, want)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("testid", testSecret, zerolog.Nop(), WithEndpoint(srv.URL))
}

func TestDescribeSubdomainRecordsFiltersExactRR(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		verifySignature(t, query)
		if got := query.Get("Action"); got != "DescribeDomainRecords" {
			t.Errorf("Action = %q", got)
		}
		if got := query.Get("DomainName"); got != "example.com" {
			t.Errorf("DomainName = %q", got)
		}
		if got := query.Get("RRKeyWord"); got != "ai" {
			t.Errorf("RRKeyWord = %q", got)
		}
		if got := query.Get("Type"); got != "A" {
			t.Errorf("Type = %q", got)
		}
		io.WriteString(w, `{
			"RequestId": "req-1",
			"TotalCount": 2,
			"DomainRecords": {"Record": [
				{"RecordId": "r1", "RR": "ai", "Type": "A", "Value": "1.2.3.4", "TTL": 600},
				{"RecordId": "r2", "RR": "ai-staging", "Type": "A", "Value": "9.9.9.9", "TTL": 600}
			]}
		}`)
	})

	records, err := client.DescribeSubdomainRecords(context.Background(), "example.com", "ai")
	if err != nil {
		t.Fatalf("DescribeSubdomainRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 exact-match record, got %d", len(records))
	}
	if records[0].RecordID != "r1" || records[0].Value != "1.2.3.4" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestAddRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		verifySignature(t, query)
		if got := query.Get("Action"); got != "AddDomainRecord" {
			t.Errorf("Action = %q", got)
		}
		if got := query.Get("Value"); got != "5.6.7.8" {
			t.Errorf("Value = %q", got)
		}
		if got := query.Get("TTL"); got != "600" {
			t.Errorf("TTL = %q", got)
		}
		io.WriteString(w, `{"RequestId": "req-2", "RecordId": "new-record"}`)
	})

	recordID, err := client.AddRecord(context.Background(), "example.com", "ai", "5.6.7.8", 600)
	if err != nil {
		t.Fatalf("AddRecord failed: %v", err)
	}
	if recordID != "new-record" {
		t.Fatalf("expected record id new-record, got %q", recordID)
	}
}

func TestUpdateRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		verifySignature(t, query)
		if got := query.Get("Action"); got != "UpdateDomainRecord" {
			t.Errorf("Action = %q", got)
		}
		if got := query.Get("RecordId"); got != "r1" {
			t.Errorf("RecordId = %q", got)
		}
		if got := query.Get("TTL"); got != "300" {
			t.Errorf("TTL = %q", got)
		}
		io.WriteString(w, `{"RequestId": "req-3", "RecordId": "r1"}`)
	})

	if err := client.UpdateRecord(context.Background(), "r1", "ai", "5.6.7.8", 300); err != nil {
		t.Fatalf("UpdateRecord failed: %v", err)
	}
}

func TestAPIErrorIsSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"RequestId": "req-4", "Code": "InvalidAccessKeyId.NotFound", "Message": "Specified access key is not found."}`)
	})

	_, err := client.DescribeSubdomainRecords(context.Background(), "example.com", "ai")
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != "InvalidAccessKeyId.NotFound" {
		t.Fatalf("unexpected error code %q", apiErr.Code)
	}
	if apiErr.HTTPStatus != http.StatusNotFound {
		t.Fatalf("unexpected http status %d", apiErr.HTTPStatus)
	}
}
