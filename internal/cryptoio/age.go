// Package cryptoio adapts between a reader-only store (download/upload)
// and age, which exposes a reader-based decrypt but only a writer-based
// encrypt. Decrypt is a thin, lazy wrapper; Encrypt bridges the impedance
// mismatch with an in-process pipe and a background pump task.
package cryptoio

import (
	"fmt"
	"io"

	"filippo.io/age"
	"golang.org/x/sync/errgroup"
)

// Decrypt wraps an age decryptor around ciphertext, handling auto-detection
// of the armored/binary envelope. If the header advertises passphrase
// (scrypt) encryption, it fails immediately with ErrPassphraseUnsupported —
// no prompting, no fallback. Otherwise it returns a plaintext reader driven
// lazily by the consumer; nothing is decrypted until the caller reads.
func Decrypt(ciphertext io.Reader, identities []age.Identity) (io.Reader, error) {
	dearmored, err := dearmor(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("read-header: %w", err)
	}

	checked, err := rejectPassphrase(dearmored)
	if err != nil {
		return nil, err
	}

	r, err := age.Decrypt(checked, identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return r, nil
}

// JoinHandle surfaces the error, if any, from the background pump task
// started by Encrypt. The caller must drain the returned reader to EOF and
// then call Wait — the pipe is an unbuffered in-process io.Pipe, so both
// sides must make progress or it deadlocks.
type JoinHandle struct {
	g *errgroup.Group
}

// Wait blocks until the pump task has finished and returns its error, if
// any.
func (j *JoinHandle) Wait() error {
	return j.g.Wait()
}

// Encrypt streams plaintext from r through an age encoder addressed to
// recipients, returning a ciphertext reader and a join handle. A background
// goroutine copies r through the age writer into the write end of an
// internal pipe; the caller reads ciphertext from the returned reader. This
// exists because age only offers a writer-based encrypt API while the
// store only offers a reader-based upload API.
func Encrypt(r io.Reader, recipients []age.Recipient) (io.Reader, *JoinHandle, error) {
	if len(recipients) == 0 {
		return nil, nil, ErrNoRecipients
	}

	pr, pw := io.Pipe()
	g := new(errgroup.Group)

	g.Go(func() error {
		w, err := age.Encrypt(pw, recipients...)
		if err != nil {
			pw.CloseWithError(err)
			return fmt.Errorf("create-stream: %w", err)
		}

		if _, err := io.Copy(w, r); err != nil {
			pw.CloseWithError(err)
			return fmt.Errorf("write-ciphertext: %w", err)
		}

		if err := w.Close(); err != nil {
			pw.CloseWithError(err)
			return fmt.Errorf("close-output: %w", err)
		}

		return pw.Close()
	})

	return pr, &JoinHandle{g: g}, nil
}
