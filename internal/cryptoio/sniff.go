package cryptoio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"filippo.io/age/armor"
)

const armorBeginLine = "-----BEGIN AGE ENCRYPTED FILE-----"

// dearmor peeks the first line of r; if it looks armored, wraps r in an
// armor.Reader, otherwise returns it unchanged. Either way the returned
// reader starts at the same logical position r did.
func dearmor(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	peek, err := br.Peek(len(armorBeginLine))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peeking header: %w", err)
	}
	if string(peek) == armorBeginLine {
		return armor.NewReader(br), nil
	}
	return br, nil
}

// rejectPassphrase peeks the age header for a scrypt (passphrase) stanza
// and returns ErrPassphraseUnsupported if one is present. It reconstructs
// and returns a reader equivalent to the input, having consumed nothing
// from the caller's point of view.
func rejectPassphrase(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	var consumed bytes.Buffer

	firstLine, err := br.ReadString('\n')
	consumed.WriteString(firstLine)
	if err != nil {
		if err == io.EOF {
			return io.MultiReader(&consumed, br), nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if strings.TrimSuffix(firstLine, "\n") != "age-encryption.org/v1" {
		// Not a recognizable age stream; let age.Decrypt produce the
		// appropriate error downstream.
		return io.MultiReader(&consumed, br), nil
	}

	for {
		line, err := br.ReadString('\n')
		consumed.WriteString(line)
		trimmed := strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(trimmed, "-> scrypt") {
			return nil, ErrPassphraseUnsupported
		}
		if strings.HasPrefix(trimmed, "---") {
			// End of header (MAC line); no scrypt stanza seen.
			break
		}
		if err != nil {
			// EOF or read error before a well-formed header closed; stop
			// sniffing and let age.Decrypt report the real problem.
			break
		}
	}

	return io.MultiReader(&consumed, br), nil
}
