package alidns

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// percentEncode applies the provider's RFC 3986 encoding variant:
// spaces become %20, asterisks %2A, and %7E is left as a tilde.
func percentEncode(s string) string {
	encoded := url.QueryEscape(s)
	encoded = strings.ReplaceAll(encoded, "+", "%20")
	encoded = strings.ReplaceAll(encoded, "*", "%2A")
	encoded = strings.ReplaceAll(encoded, "%7E", "~")
	return encoded
}

// canonicalize builds the sorted, percent-encoded query string the
// signature is computed over. The Signature parameter itself must not
// be present in params.
func canonicalize(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(percentEncode(k))
		b.WriteByte('=')
		b.WriteString(percentEncode(params.Get(k)))
	}
	return b.String()
}

// sign computes the request signature per the provider's published RPC
// scheme: HMAC-SHA1 over "METHOD&%2F&<encoded canonical query>" keyed
// with the access key secret plus a trailing ampersand, base64-encoded.
func sign(method, accessKeySecret string, params url.Values) string {
	stringToSign := method + "&" + percentEncode("/") + "&" + percentEncode(canonicalize(params))
	mac := hmac.New(sha1.New, []byte(accessKeySecret+"&"))
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
