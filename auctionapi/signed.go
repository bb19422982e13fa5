package auctionapi

import (
	"bytes"
	"compress/gzip"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"
)

// ErrSignature marks a signed report whose COSE signature does not verify.
var ErrSignature = errors.New("report signature verification failed")

// SignedReport is a COSE_Sign1 message whose payload is the CBOR encoded Report.
type SignedReport []byte

// SignedReportBase64 is a SignedReport in standard base64.
type SignedReportBase64 string

// SignedReportURLBase64 is a SignedReport in unpadded URL-safe base64.
type SignedReportURLBase64 string

// SignedReportGzip is a gzipped SignedReport in unpadded URL-safe base64.
type SignedReportGzip string

// SignReport encodes report as CBOR and signs it with ES256.
func SignReport(report *Report, key *ecdsa.PrivateKey) (SignedReport, error) {
	if key == nil {
		return nil, fmt.Errorf("sign report: signing key is required")
	}

	payload, err := report.EncodeCBOR()
	if err != nil {
		return nil, err
	}

	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	headers := cose.Headers{
		Protected: cose.ProtectedHeader{
			cose.HeaderLabelAlgorithm: cose.AlgorithmES256,
		},
	}

	signed, err := cose.Sign1(rand.Reader, signer, headers, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("sign report: %w", err)
	}
	return SignedReport(signed), nil
}

// Verify checks the signature with pub and decodes the report.
func (s SignedReport) Verify(pub *ecdsa.PublicKey) (*Report, error) {
	if pub == nil {
		return nil, fmt.Errorf("verify report: public key is required")
	}

	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(s); err != nil {
		return nil, fmt.Errorf("parse COSE_Sign1: %w", err)
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmES256, pub)
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}

	if err := msg.Verify(nil, verifier); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignature, err)
	}

	return DecodeReportCBOR(msg.Payload)
}

// Payload returns the report inside the message without checking the signature.
// COSE_Sign1 structure: [protected, unprotected, payload, signature]
func (s SignedReport) Payload() (*Report, error) {
	var tag cbor.RawTag
	var coseArray []any

	// Signed reports are tagged (18); accept an untagged array as well
	if err := cbor.Unmarshal(s, &tag); err == nil {
		err = cbor.Unmarshal(tag.Content, &coseArray)
		if err != nil {
			return nil, fmt.Errorf("parse COSE array: %w", err)
		}
	} else if err := cbor.Unmarshal(s, &coseArray); err != nil {
		return nil, fmt.Errorf("parse COSE array: %w", err)
	}

	if len(coseArray) != 4 {
		return nil, fmt.Errorf("invalid COSE_Sign1 structure: expected 4 elements, got %d", len(coseArray))
	}

	payload, ok := coseArray[2].([]byte)
	if !ok {
		return nil, fmt.Errorf("invalid payload in COSE structure")
	}

	return DecodeReportCBOR(payload)
}

// EncodeBase64 encodes the message in standard base64.
func (s SignedReport) EncodeBase64() SignedReportBase64 {
	return SignedReportBase64(base64.StdEncoding.EncodeToString(s))
}

// EncodeURLSafe encodes the message in unpadded URL-safe base64.
func (s SignedReport) EncodeURLSafe() SignedReportURLBase64 {
	return SignedReportURLBase64(base64.RawURLEncoding.EncodeToString(s))
}

// CompressGzip gzips the message and encodes it in unpadded URL-safe base64.
// The gzip header carries no name or timestamp, so the output is deterministic.
func (s SignedReport) CompressGzip() (SignedReportGzip, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", fmt.Errorf("create gzip writer: %w", err)
	}
	if _, err := gz.Write(s); err != nil {
		return "", fmt.Errorf("gzip write: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("gzip close: %w", err)
	}
	return SignedReportGzip(base64.RawURLEncoding.EncodeToString(buf.Bytes())), nil
}

func (b SignedReportBase64) String() string {
	return string(b)
}

// Decode returns the raw COSE bytes.
func (b SignedReportBase64) Decode() (SignedReport, error) {
	data, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return nil, fmt.Errorf("decode COSE base64: %w", err)
	}
	return SignedReport(data), nil
}

func (u SignedReportURLBase64) String() string {
	return string(u)
}

// Decode accepts the URL-safe alphabet with or without padding.
func (u SignedReportURLBase64) Decode() (SignedReport, error) {
	s := strings.TrimRight(string(u), "=")
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64url: %w", err)
	}
	return SignedReport(data), nil
}

func (g SignedReportGzip) String() string {
	return string(g)
}

// Decompress returns the raw COSE bytes.
func (g SignedReportGzip) Decompress() (SignedReport, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(string(g), "="))
	if err != nil {
		return nil, fmt.Errorf("decode base64url: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("read gzip data: %w", err)
	}
	return SignedReport(data), nil
}

// Signed report text encodings
const (
	EncodingGzip      = "gzip"
	EncodingBase64    = "base64"
	EncodingBase64URL = "base64url"
)

// Encodings lists the accepted text encodings, default first.
func Encodings() []string {
	return []string{EncodingGzip, EncodingBase64, EncodingBase64URL}
}

// Encode renders the message in the named text encoding.
func (s SignedReport) Encode(encoding string) (string, error) {
	switch encoding {
	case EncodingGzip, "":
		compressed, err := s.CompressGzip()
		if err != nil {
			return "", err
		}
		return compressed.String(), nil
	case EncodingBase64:
		return s.EncodeBase64().String(), nil
	case EncodingBase64URL:
		return s.EncodeURLSafe().String(), nil
	default:
		return "", fmt.Errorf("unknown signed report encoding %q", encoding)
	}
}

// DecodeSignedReport parses text produced by SignedReport.Encode.
func DecodeSignedReport(text, encoding string) (SignedReport, error) {
	text = strings.TrimSpace(text)
	switch encoding {
	case EncodingGzip, "":
		return SignedReportGzip(text).Decompress()
	case EncodingBase64:
		return SignedReportBase64(text).Decode()
	case EncodingBase64URL:
		return SignedReportURLBase64(text).Decode()
	default:
		return nil, fmt.Errorf("unknown signed report encoding %q", encoding)
	}
}
