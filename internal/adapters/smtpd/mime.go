package smtpd

import (
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// decodeHeader decodes RFC 2047 encoded-words, with IANA charset lookup
// for non-UTF-8 encodings.
func decodeHeader(value string) string {
	dec := mime.WordDecoder{
		CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
			return charsetReader(charset, input), nil
		},
	}
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// charsetReader wraps input with a decoder for the named charset,
// falling back to pass-through when the charset is unknown.
func charsetReader(charset string, input io.Reader) io.Reader {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return input
	}
	return transform.NewReader(input, enc.NewDecoder())
}

// extractText walks the message's MIME structure and returns the first
// text/plain content, decoded per its transfer encoding and charset.
// Single-part messages return their body as-is.
func extractText(msg *mail.Message, logger *zap.Logger) string {
	var found string

	var processEntity func(header interface{ Get(string) string }, body io.Reader)
	processEntity = func(header interface{ Get(string) string }, body io.Reader) {
		ctype, params, err := mime.ParseMediaType(header.Get("Content-Type"))
		if err != nil {
			ctype = "text/plain"
		}

		if strings.HasPrefix(ctype, "multipart/") {
			mr := multipart.NewReader(body, params["boundary"])
			for {
				part, err := mr.NextPart()
				if err == io.EOF {
					break
				}
				if err != nil {
					logger.Debug("Error reading multipart body", zap.Error(err))
					break
				}
				processEntity(part.Header, part)
			}
			return
		}

		// skip attachments
		if disp, _, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil && disp == "attachment" {
			return
		}

		if found != "" || ctype != "text/plain" {
			return
		}

		reader := body
		switch strings.ToLower(strings.TrimSpace(header.Get("Content-Transfer-Encoding"))) {
		case "base64":
			reader = base64.NewDecoder(base64.StdEncoding, body)
		case "quoted-printable":
			reader = quotedprintable.NewReader(body)
		}

		if charset := params["charset"]; charset != "" {
			reader = charsetReader(charset, reader)
		}

		content, err := io.ReadAll(reader)
		if err != nil {
			logger.Debug("Error reading message part", zap.Error(err))
			return
		}
		found = string(content)
	}

	processEntity(msg.Header, msg.Body)
	return strings.TrimSpace(found)
}
