package email

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

const maxPartBytes = 8 << 20

// parsed is the text content of one RFC822 message.
type parsed struct {
	Subject string
	From    string
	Plain   string
	HTML    string
}

// parseRFC822 extracts the decoded subject and the largest text/plain and
// text/html parts. Unparseable input is treated as a plain-text body.
func parseRFC822(raw []byte) parsed {
	if len(raw) == 0 {
		return parsed{}
	}
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return parsed{Plain: string(raw)}
	}

	p := parsed{
		Subject: decodeHeader(msg.Header.Get("Subject")),
		From:    decodeHeader(msg.Header.Get("From")),
	}
	body, _ := io.ReadAll(io.LimitReader(msg.Body, maxPartBytes))
	p.Plain, p.HTML = textParts(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), body)
	if p.Plain == "" && p.HTML == "" {
		p.Plain = string(body)
	}
	return p
}

func textParts(contentType, cte string, body []byte) (plain, html string) {
	media, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(decodeTransfer(body, cte)), ""
	}
	media = strings.ToLower(media)

	if !strings.HasPrefix(media, "multipart/") {
		s := string(decodeTransfer(body, cte))
		if media == "text/html" {
			return "", s
		}
		return s, ""
	}

	boundary := params["boundary"]
	if boundary == "" {
		return string(decodeTransfer(body, cte)), ""
	}
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		b, _ := io.ReadAll(io.LimitReader(part, maxPartBytes))
		pl, ht := textParts(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), b)
		if len(pl) > len(plain) {
			plain = pl
		}
		if len(ht) > len(html) {
			html = ht
		}
	}
	return plain, html
}

func decodeTransfer(b []byte, cte string) []byte {
	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(cte)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, bytes.NewReader(bytes.Join(bytes.Fields(b), nil)))
	case "quoted-printable":
		r = quotedprintable.NewReader(bytes.NewReader(b))
	default:
		return b
	}
	out, err := io.ReadAll(io.LimitReader(r, maxPartBytes))
	if err != nil && len(out) == 0 {
		return b
	}
	return out
}

func decodeHeader(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	out, err := new(mime.WordDecoder).DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}
