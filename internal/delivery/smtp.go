package delivery

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

// SMTPProvider delivers mail through an authenticated relay (smarthost).
// The relay assigns no message id, so a locally generated one is returned.
type SMTPProvider struct {
	addr     string
	username string
	password string
	startTLS bool
	signer   *Signer
	timeout  time.Duration
}

// NewSMTPProvider creates a relay provider. signer may be nil to submit
// unsigned messages.
func NewSMTPProvider(host string, port int, username, password string, startTLS bool, signer *Signer) *SMTPProvider {
	return &SMTPProvider{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		username: username,
		password: password,
		startTLS: startTLS,
		signer:   signer,
		timeout:  30 * time.Second,
	}
}

// Send submits one message to the relay.
func (p *SMTPProvider) Send(ctx context.Context, msg *Message) (string, error) {
	data, err := p.buildMessage(msg)
	if err != nil {
		return "", &Error{Message: err.Error()}
	}

	var client *smtp.Client
	if p.startTLS {
		client, err = smtp.DialStartTLS(p.addr, nil)
	} else {
		client, err = smtp.Dial(p.addr)
	}
	if err != nil {
		return "", &Error{Message: fmt.Sprintf("connect to relay %s: %v", p.addr, err)}
	}
	defer client.Close()

	if p.username != "" {
		auth := sasl.NewPlainClient("", p.username, p.password)
		if err := client.Auth(auth); err != nil {
			return "", &Error{Message: fmt.Sprintf("relay auth failed: %v", err)}
		}
	}

	if err := client.SendMail(msg.From, []string{msg.To}, bytes.NewReader(data)); err != nil {
		return "", &Error{Message: err.Error()}
	}

	// Delivery already succeeded at this point; a failed QUIT is not an error.
	_ = client.Quit()

	return uuid.New().String(), nil
}

func (p *SMTPProvider) buildMessage(msg *Message) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", msg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@lunamail>\r\n", uuid.New().String())
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)
	buf.WriteString("\r\n")

	if p.signer == nil {
		return buf.Bytes(), nil
	}

	signed, err := p.signer.Sign(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("dkim signing failed: %w", err)
	}
	return signed, nil
}
