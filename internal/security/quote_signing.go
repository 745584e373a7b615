// Package security signs estimator quotes so a later lead submission can prove the
// figures it carries were issued by this service.
package security

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Verification failures
var (
	ErrQuoteExpired      = errors.New("quote expired")
	ErrDigestMismatch    = errors.New("quote digest mismatch")
	ErrSignatureMismatch = errors.New("quote signature invalid")
)

// SigningOptions configures quote signing
type SigningOptions struct {
	// Validity is how long a signed quote is honoured
	Validity time.Duration `json:"validity"`
}

// DefaultSigningOptions returns a 30 day validity window
func DefaultSigningOptions() SigningOptions {
	return SigningOptions{Validity: 30 * 24 * time.Hour}
}

// SignedQuote wraps an estimator result with a secp256k1 signature over its Keccak256 digest
type SignedQuote struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	IssuedAt   int64           `json:"issued_at"`
	ValidUntil int64           `json:"valid_until"`
	Digest     string          `json:"digest"`
	Signature  string          `json:"signature"`
	PublicKey  string          `json:"public_key"`
}

// QuoteSigner signs and verifies quotes with a key generated at startup
type QuoteSigner struct {
	privateKey   *ecdsa.PrivateKey
	publicKeyHex string
	opts         SigningOptions
	now          func() time.Time
}

// NewQuoteSigner generates a fresh signing key
func NewQuoteSigner(opts SigningOptions) (*QuoteSigner, error) {
	if opts.Validity <= 0 {
		return nil, fmt.Errorf("quote validity must be positive, got %s", opts.Validity)
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	publicKeyHex := hexutil.Encode(crypto.FromECDSAPub(&privateKey.PublicKey))

	logrus.WithField("public_key", publicKeyHex[:18]+"...").Info("Quote signer initialized")
	return &QuoteSigner{
		privateKey:   privateKey,
		publicKeyHex: publicKeyHex,
		opts:         opts,
		now:          time.Now,
	}, nil
}

// PublicKey returns the hex-encoded uncompressed public key
func (s *QuoteSigner) PublicKey() string {
	return s.publicKeyHex
}

// Sign wraps payload in a signed quote of the given kind
func (s *QuoteSigner) Sign(kind string, payload interface{}) (SignedQuote, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return SignedQuote{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	issued := s.now()
	q := SignedQuote{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    raw,
		IssuedAt:   issued.Unix(),
		ValidUntil: issued.Add(s.opts.Validity).Unix(),
		PublicKey:  s.publicKeyHex,
	}

	digest, err := quoteDigest(q)
	if err != nil {
		return SignedQuote{}, err
	}
	signature, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return SignedQuote{}, fmt.Errorf("failed to sign quote: %w", err)
	}

	q.Digest = hexutil.Encode(digest)
	q.Signature = hexutil.Encode(signature)
	return q, nil
}

// Verify checks that q was signed by this signer, is unmodified and has not expired
func (s *QuoteSigner) Verify(q SignedQuote) error {
	if s.now().Unix() > q.ValidUntil {
		return fmt.Errorf("%w at %s", ErrQuoteExpired, time.Unix(q.ValidUntil, 0).UTC().Format(time.RFC3339))
	}

	digest, err := quoteDigest(q)
	if err != nil {
		return err
	}
	if hexutil.Encode(digest) != q.Digest {
		return ErrDigestMismatch
	}

	signature, err := hexutil.Decode(q.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
	}
	if len(signature) != crypto.SignatureLength {
		return fmt.Errorf("%w: length %d", ErrSignatureMismatch, len(signature))
	}

	recovered, err := crypto.SigToPub(digest, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
	}
	recoveredBytes := crypto.FromECDSAPub(recovered)
	if hexutil.Encode(recoveredBytes) != s.publicKeyHex {
		return fmt.Errorf("%w: signed by another key", ErrSignatureMismatch)
	}
	if !crypto.VerifySignature(recoveredBytes, digest, signature[:crypto.RecoveryIDOffset]) {
		return ErrSignatureMismatch
	}
	return nil
}

// quoteDigest hashes every signed field; the payload is compacted first so
// whitespace changes from a client round trip do not matter
func quoteDigest(q SignedQuote) ([]byte, error) {
	var payload bytes.Buffer
	if err := json.Compact(&payload, q.Payload); err != nil {
		return nil, fmt.Errorf("invalid quote payload: %w", err)
	}
	return crypto.Keccak256(
		[]byte(q.ID),
		[]byte(q.Kind),
		[]byte(strconv.FormatInt(q.IssuedAt, 10)),
		[]byte(strconv.FormatInt(q.ValidUntil, 10)),
		payload.Bytes(),
	), nil
}
