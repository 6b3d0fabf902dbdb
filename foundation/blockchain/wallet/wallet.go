// Package wallet manages the secp256k1 key pair of an account and produces
// the signatures attached to transactions. The blockchain only checks that
// a signature and public key are present, Verify is provided for clients
// that want to check them.
package wallet

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// addressLength is the number of hex characters of the compressed public
// key used as the address.
const addressLength = 10

// ErrInvalidSignature is returned when a signature doesn't match the data.
var ErrInvalidSignature = errors.New("invalid signature")

// Wallet represents a key pair for an account.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
}

// New generates a new key pair.
func New() (Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("generate key: %w", err)
	}

	return Wallet{privateKey: privateKey}, nil
}

// Load reads a hex encoded private key from the specified file.
func Load(path string) (Wallet, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return Wallet{}, fmt.Errorf("load key %s: %w", path, err)
	}

	return Wallet{privateKey: privateKey}, nil
}

// FromHex constructs a wallet from a hex encoded private key.
func FromHex(hexKey string) (Wallet, error) {
	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return Wallet{}, fmt.Errorf("hex key: %w", err)
	}

	return Wallet{privateKey: privateKey}, nil
}

// Save writes the private key hex encoded to the specified file.
func (w Wallet) Save(path string) error {
	return crypto.SaveECDSA(path, w.privateKey)
}

// PrivateKey returns the hex encoded private key.
func (w Wallet) PrivateKey() string {
	return hex.EncodeToString(crypto.FromECDSA(w.privateKey))
}

// PublicKey returns the hex encoded compressed public key.
func (w Wallet) PublicKey() string {
	return hex.EncodeToString(crypto.CompressPubkey(&w.privateKey.PublicKey))
}

// Address returns the account address, a prefix of the public key.
func (w Wallet) Address() string {
	return w.PublicKey()[:addressLength]
}

// Sign returns the hex encoded 64 byte [R|S] signature of the sha256 hash
// of the data.
func (w Wallet) Sign(data string) (string, error) {
	hash := sha256.Sum256([]byte(data))

	sig, err := crypto.Sign(hash[:], w.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}

	return hex.EncodeToString(sig[:crypto.RecoveryIDOffset]), nil
}

// NewTx constructs a signed transaction from this wallet to the specified
// address. The signed data is the transaction in its hashing form.
func (w Wallet) NewTx(to string, amount float64) (database.Tx, error) {
	tx := database.NewTx(w.Address(), to, amount, "", w.PublicKey())

	sig, err := w.Sign(tx.String())
	if err != nil {
		return database.Tx{}, err
	}
	tx.Signature = sig

	return tx, nil
}

// =============================================================================

// Verify checks the hex encoded signature was produced over the data by the
// owner of the hex encoded compressed public key.
func Verify(publicKey string, data string, signature string) error {
	pub, err := hex.DecodeString(publicKey)
	if err != nil {
		return fmt.Errorf("public key: %w", err)
	}

	sig, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("signature: %w", err)
	}

	hash := sha256.Sum256([]byte(data))
	if !crypto.VerifySignature(pub, hash[:], sig) {
		return ErrInvalidSignature
	}

	return nil
}

// VerifyTx checks the signature of the transaction.
func VerifyTx(tx database.Tx) error {
	return Verify(tx.PublicKey, tx.String(), tx.Signature)
}
