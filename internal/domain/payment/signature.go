package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries "t=<unix>,v1=<hex hmac>" where the HMAC-SHA256
// covers "<unix>.<raw body>".
const SignatureHeader = "Payment-Signature"

func computeSignature(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignHeader builds a header value for body signed at ts.
func SignHeader(secret string, ts time.Time, body []byte) string {
	unix := ts.Unix()
	return "t=" + strconv.FormatInt(unix, 10) + ",v1=" + computeSignature(secret, unix, body)
}

// VerifySignature checks header against body. Any v1 entry may match, which
// lets the provider roll secrets.
func VerifySignature(header string, body []byte, secret string, tolerance time.Duration, now time.Time) error {
	if strings.TrimSpace(header) == "" {
		return ErrMissingSignature
	}

	var (
		ts   int64
		sigs []string
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			ts = parsed
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return ErrInvalidSignature
	}

	signedAt := time.Unix(ts, 0)
	if tolerance > 0 && (now.Sub(signedAt) > tolerance || signedAt.Sub(now) > tolerance) {
		return ErrStaleSignature
	}

	expected := []byte(computeSignature(secret, ts, body))
	for _, sig := range sigs {
		if hmac.Equal(expected, []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}
