package alidns

import "fmt"

// Record is a DNS record as returned by the provider's
// DescribeDomainRecords operation. RecordID is an opaque
// provider-assigned identifier.
type Record struct {
	RecordID   string `json:"RecordId"`
	DomainName string `json:"DomainName"`
	RR         string `json:"RR"`
	Type       string `json:"Type"`
	Value      string `json:"Value"`
	TTL        int    `json:"TTL"`
	Status     string `json:"Status"`
	Line       string `json:"Line"`
}

// APIError is an error response from the provider API.
type APIError struct {
	HTTPStatus int
	Code       string `json:"Code"`
	Message    string `json:"Message"`
	RequestID  string `json:"RequestId"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alidns API error %s (http %d): %s", e.Code, e.HTTPStatus, e.Message)
}

type describeDomainRecordsResponse struct {
	RequestID     string `json:"RequestId"`
	TotalCount    int64  `json:"TotalCount"`
	DomainRecords struct {
		Record []Record `json:"Record"`
	} `json:"DomainRecords"`
}

type addDomainRecordResponse struct {
	RequestID string `json:"RequestId"`
	RecordID  string `json:"RecordId"`
}

type updateDomainRecordResponse struct {
	RequestID string `json:"RequestId"`
	RecordID  string `json:"RecordId"`
}
