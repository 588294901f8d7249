// Package mailfile reads single-part notification emails saved as .eml files.
package mailfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"
)

// Message is the part of an email the parser needs.
type Message struct {
	MessageID string
	Subject   string
	Date      time.Time // zero when the Date header is missing or malformed
	Body      string
}

var wordDecoder = &mime.WordDecoder{}

// Read parses an RFC 5322 message. Multipart bodies are returned undecoded.
func Read(r io.Reader) (*Message, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}
	return Parse(raw)
}

// Parse is Read over an in-memory message.
func Parse(raw []byte) (*Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing message headers: %w", err)
	}

	body, err := decodeBody(msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}

	subject := msg.Header.Get("Subject")
	if decoded, err := wordDecoder.DecodeHeader(subject); err == nil {
		subject = decoded
	}

	var date time.Time
	if d, err := msg.Header.Date(); err == nil {
		date = d
	}

	id := strings.TrimSpace(msg.Header.Get("Message-ID"))
	if id == "" {
		id = HashID(raw)
	}

	return &Message{
		MessageID: id,
		Subject:   subject,
		Date:      date,
		Body:      body,
	}, nil
}

func decodeBody(encoding string, r io.Reader) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// HashID derives a stable message id from raw message bytes.
func HashID(raw []byte) string {
	sum := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(sum[:])
}
