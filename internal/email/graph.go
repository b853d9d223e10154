package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

type graphAddress struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphMessage struct {
	Subject      string         `json:"subject"`
	Body         graphBody      `json:"body"`
	ToRecipients []graphAddress `json:"toRecipients"`
	CcRecipients []graphAddress `json:"ccRecipients,omitempty"`
	From         *graphAddress  `json:"from,omitempty"`
}

type graphSendMail struct {
	Message         graphMessage `json:"message"`
	SaveToSentItems bool         `json:"saveToSentItems"`
}

// GraphSender sends mail through the Microsoft Graph sendMail endpoint.
type GraphSender struct {
	BaseURL string
	From    string
	Client  *http.Client
	Log     *zap.Logger
}

// Send posts the message. Only 202 Accepted counts as success.
func (g *GraphSender) Send(ctx context.Context, accessToken string, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}

	from := msg.From
	if from == "" {
		from = g.From
	}

	endpoint := strings.TrimRight(g.BaseURL, "/") + "/me/sendMail"
	payload := graphSendMail{
		Message: graphMessage{
			Subject:      msg.Subject,
			Body:         graphBody{ContentType: "Text", Content: msg.Content.Body},
			ToRecipients: addresses(msg.To),
			CcRecipients: addresses(msg.Cc),
		},
		SaveToSentItems: true,
	}
	if msg.Content.HTML {
		payload.Message.Body.ContentType = "HTML"
	}
	if from != "" {
		sender := address(from)
		payload.Message.From = &sender
		endpoint = strings.TrimRight(g.BaseURL, "/") + "/users/" + url.PathEscape(from) + "/sendMail"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sendMail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	g.logger().Info("sending email",
		zap.Strings("to", msg.To),
		zap.Strings("cc", msg.Cc),
		zap.String("from", from),
		zap.String("subject", truncate(msg.Subject, 50)),
	)

	resp, err := g.client().Do(req)
	if err != nil {
		return fmt.Errorf("graph send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrNotAccepted, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}

func (g *GraphSender) client() *http.Client {
	if g.Client == nil {
		return http.DefaultClient
	}
	return g.Client
}

func (g *GraphSender) logger() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}

func address(a string) graphAddress {
	var ga graphAddress
	ga.EmailAddress.Address = a
	return ga
}

func addresses(list []string) []graphAddress {
	if len(list) == 0 {
		return nil
	}
	out := make([]graphAddress, 0, len(list))
	for _, a := range list {
		out = append(out, address(a))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
