package tclock

import "io"

// Encryptor protects photo backups at rest. The kiosk runs unattended,
// so decryption must work without an operator passphrase; key material
// lives in kiosk-local files.
type Encryptor interface {
	// Setup generates and stores a new key pair. Called once by
	// `tclock config init`.
	Setup() error

	Encrypt(r io.Reader, w io.Writer) error
	Decrypt(r io.Reader, w io.Writer) error

	// IsConfigured reports whether key material is in place.
	IsConfigured() bool
}
