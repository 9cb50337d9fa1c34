package worker

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // npm still publishes sha1 shasums for old versions
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"strings"

	"go.trai.ch/devd/internal/core/domain"
	"go.trai.ch/zerr"
)

// algorithms in order of preference.
var algorithms = []struct {
	name string
	new  func() hash.Hash
}{
	{name: "sha512", new: sha512.New},
	{name: "sha256", new: sha256.New},
	{name: "sha1", new: sha1.New},
}

// verifier checks a Subresource Integrity string against streamed content.
type verifier struct {
	algorithm string
	want      []byte
	h         hash.Hash
}

// newVerifier picks the strongest supported digest from an SRI string.
// An empty string yields a nil verifier, which accepts everything.
func newVerifier(integrity string) (*verifier, error) {
	integrity = strings.TrimSpace(integrity)
	if integrity == "" {
		return nil, nil
	}

	digests := make(map[string]string)
	for _, field := range strings.Fields(integrity) {
		algo, digest, ok := strings.Cut(field, "-")
		if !ok {
			continue
		}
		digests[algo] = digest
	}

	for _, algo := range algorithms {
		digest, ok := digests[algo.name]
		if !ok {
			continue
		}
		want, err := decodeDigest(digest, algo.new().Size())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrUnsupportedIntegrity.Error()), "integrity", integrity)
		}
		return &verifier{algorithm: algo.name, want: want, h: algo.new()}, nil
	}

	return nil, zerr.With(domain.ErrUnsupportedIntegrity, "integrity", integrity)
}

// decodeDigest accepts base64 digests and the hex shasums older npm metadata carries.
func decodeDigest(digest string, size int) ([]byte, error) {
	if len(digest) == hex.EncodedLen(size) {
		if raw, err := hex.DecodeString(digest); err == nil {
			return raw, nil
		}
	}
	return base64.StdEncoding.DecodeString(digest)
}

func (v *verifier) Write(p []byte) (int, error) {
	return v.h.Write(p)
}

func (v *verifier) verify() error {
	got := v.h.Sum(nil)
	if bytes.Equal(got, v.want) {
		return nil
	}
	err := zerr.With(domain.ErrIntegrityMismatch, "algorithm", v.algorithm)
	err = zerr.With(err, "expected", base64.StdEncoding.EncodeToString(v.want))
	return zerr.With(err, "actual", base64.StdEncoding.EncodeToString(got))
}
