package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidMessage covers every SIWE verification failure. Callers only ever
// see this one error: which check failed is not leaked.
var ErrInvalidMessage = errors.New("invalid message or signature")

// Message is an EIP-4361 (Sign-In with Ethereum) message.
type Message struct {
	Domain         string
	Address        string
	Statement      string
	URI            string
	Version        string
	ChainID        int
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime *time.Time
}

// Prepare renders the message in the canonical EIP-4361 wire form, which is
// exactly what the wallet signs.
func (m *Message) Prepare() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants you to sign in with your Ethereum account:\n", m.Domain)
	fmt.Fprintf(&b, "%s\n\n", m.Address)
	if m.Statement != "" {
		fmt.Fprintf(&b, "%s\n", m.Statement)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "URI: %s\n", m.URI)
	fmt.Fprintf(&b, "Version: %s\n", m.Version)
	fmt.Fprintf(&b, "Chain ID: %d\n", m.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", m.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", m.IssuedAt.UTC().Format(time.RFC3339))
	if m.ExpirationTime != nil {
		fmt.Fprintf(&b, "\nExpiration Time: %s", m.ExpirationTime.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// ParseMessage parses the canonical wire form back into a Message.
func ParseMessage(raw string) (*Message, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 || !strings.HasSuffix(lines[0], " wants you to sign in with your Ethereum account:") {
		return nil, ErrInvalidMessage
	}

	m := &Message{
		Domain:  strings.TrimSuffix(lines[0], " wants you to sign in with your Ethereum account:"),
		Address: strings.TrimSpace(lines[1]),
	}
	if !isHexAddress(m.Address) {
		return nil, ErrInvalidMessage
	}

	// Optional statement sits between two blank lines after the address.
	i := 2
	for i < len(lines) && lines[i] == "" {
		i++
	}
	if i < len(lines) && !strings.Contains(lines[i], ": ") {
		m.Statement = lines[i]
		i++
	}

	for ; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ": ")
		if !found {
			return nil, ErrInvalidMessage
		}
		switch key {
		case "URI":
			m.URI = value
		case "Version":
			m.Version = value
		case "Chain ID":
			id, err := strconv.Atoi(value)
			if err != nil {
				return nil, ErrInvalidMessage
			}
			m.ChainID = id
		case "Nonce":
			m.Nonce = value
		case "Issued At":
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, ErrInvalidMessage
			}
			m.IssuedAt = t
		case "Expiration Time":
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, ErrInvalidMessage
			}
			m.ExpirationTime = &t
		}
	}

	if m.Nonce == "" || m.IssuedAt.IsZero() {
		return nil, ErrInvalidMessage
	}
	return m, nil
}

// Verifier checks signed SIWE messages against the serving domain, the
// message validity window, the one-shot nonce store, and the claimed address.
type Verifier struct {
	Domain  string
	ChainID int
	Nonces  *NonceStore
	// MaxAge bounds how old a message's Issued At may be. Messages carrying
	// their own Expiration Time are additionally bound by it.
	MaxAge time.Duration
	// ClockSkew tolerates small client/server clock drift on Issued At.
	ClockSkew time.Duration
}

func NewVerifier(domain string, chainID int, nonces *NonceStore) *Verifier {
	return &Verifier{
		Domain:    domain,
		ChainID:   chainID,
		Nonces:    nonces,
		MaxAge:    10 * time.Minute,
		ClockSkew: time.Minute,
	}
}

// Verify validates the signed message and returns the recovered wallet
// address, lowercased. On success the message's nonce has been consumed:
// it is spent before the caller may mint a session, so two concurrent
// verifications of one nonce cannot both pass. Every failure surfaces as
// ErrInvalidMessage.
func (v *Verifier) Verify(rawMessage, signature string) (string, error) {
	m, err := ParseMessage(rawMessage)
	if err != nil {
		return "", ErrInvalidMessage
	}

	if m.Domain != v.Domain {
		return "", ErrInvalidMessage
	}
	if v.ChainID != 0 && m.ChainID != v.ChainID {
		return "", ErrInvalidMessage
	}

	now := time.Now()
	if m.IssuedAt.After(now.Add(v.ClockSkew)) || now.Sub(m.IssuedAt) > v.MaxAge {
		return "", ErrInvalidMessage
	}
	if m.ExpirationTime != nil && !now.Before(*m.ExpirationTime) {
		return "", ErrInvalidMessage
	}

	recovered, err := RecoverAddress(rawMessage, signature)
	if err != nil {
		return "", ErrInvalidMessage
	}
	if !strings.EqualFold(recovered, m.Address) {
		return "", ErrInvalidMessage
	}

	// Last gate. Consume is atomic, so the nonce is spent exactly once.
	if !v.Nonces.Consume(m.Nonce) {
		return "", ErrInvalidMessage
	}

	return strings.ToLower(recovered), nil
}

// RecoverAddress recovers the Ethereum address that produced an EIP-191
// personal_sign signature over message.
func RecoverAddress(message, signature string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != 65 {
		return "", fmt.Errorf("signature must be 65 bytes, got %d", len(sig))
	}

	// Wallets put the recovery id last (27/28 or 0/1); RecoverCompact wants
	// it first as a 27-based header byte.
	header := sig[64]
	if header < 27 {
		header += 27
	}
	compact := make([]byte, 65)
	compact[0] = header
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, personalHash(message))
	if err != nil {
		return "", fmt.Errorf("recover pubkey: %w", err)
	}
	return PubkeyAddress(pub), nil
}

// PubkeyAddress derives the 0x address from a secp256k1 public key.
func PubkeyAddress(pub *secp256k1.PublicKey) string {
	raw := pub.SerializeUncompressed()
	sum := keccak256(raw[1:]) // drop the 0x04 prefix
	return "0x" + hex.EncodeToString(sum[12:])
}

// personalHash computes the EIP-191 prefixed hash wallets sign.
func personalHash(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return keccak256([]byte(prefixed))
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

func isHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}
