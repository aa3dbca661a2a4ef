// Package webhook verifies signed identity-provider notifications.
//
// The provider signs each delivery svix-style: the signed content is
// "{id}.{timestamp}.{body}", the signature is base64(HMAC-SHA256) under a
// shared secret, and the signature header carries one or more
// space-separated "v1,<signature>" candidates.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const secretPrefix = "whsec_"

var (
	// ErrMissingHeaders indicates one of the three required signature
	// headers was absent.
	ErrMissingHeaders = errors.New("missing webhook signature headers")
	// ErrInvalidSignature indicates no signature candidate matched.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrStaleTimestamp indicates the delivery timestamp is outside the
	// tolerance window.
	ErrStaleTimestamp = errors.New("webhook timestamp outside tolerance")
)

// Verifier validates webhook deliveries against a shared secret.
type Verifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier builds a verifier from the provider's shared secret. The
// secret may carry the provider's "whsec_" prefix around a base64 payload;
// a missing or malformed secret yields a verifier that rejects everything.
func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	v := &Verifier{tolerance: tolerance, now: time.Now}
	if raw, ok := strings.CutPrefix(secret, secretPrefix); ok {
		if key, err := base64.StdEncoding.DecodeString(raw); err == nil {
			v.key = key
		}
	} else if secret != "" {
		v.key = []byte(secret)
	}
	return v
}

// Verify checks the three signature headers against the raw request body.
// Fails closed: missing headers, a stale timestamp, an unconfigured secret,
// and a signature mismatch are all rejections.
func (v *Verifier) Verify(id, timestamp, signature string, body []byte) error {
	if id == "" || timestamp == "" || signature == "" {
		return ErrMissingHeaders
	}
	if len(v.key) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: unparseable timestamp", ErrInvalidSignature)
	}
	if v.tolerance > 0 {
		age := v.now().Sub(time.Unix(ts, 0))
		if age > v.tolerance || age < -v.tolerance {
			return ErrStaleTimestamp
		}
	}

	expected := v.sign(id, timestamp, body)
	for _, candidate := range strings.Fields(signature) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		provided, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(provided, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func (v *Verifier) sign(id, timestamp string, body []byte) []byte {
	h := hmac.New(sha256.New, v.key)
	fmt.Fprintf(h, "%s.%s.", id, timestamp)
	h.Write(body)
	return h.Sum(nil)
}
