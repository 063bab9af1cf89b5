package notify

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNtfySend(t *testing.T) {
	var gotTitle, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNtfy(server.URL, time.Second)
	err := n.Send(context.Background(), "owner@example.com", "Match Found!", "<h2>Great News!</h2><p>Your item <b>Wallet</b> matched.</p>")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotTitle != "Match Found!" {
		t.Errorf("expected title header, got %q", gotTitle)
	}
	if !strings.Contains(gotBody, "To: owner@example.com") {
		t.Errorf("expected recipient in body, got %q", gotBody)
	}
	if strings.Contains(gotBody, "<b>") {
		t.Errorf("expected tags stripped, got %q", gotBody)
	}
}

func TestNtfySendEncodesTitle(t *testing.T) {
	var gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
	}))
	defer server.Close()

	subject := "🎉 Match Found!"
	if err := NewNtfy(server.URL, time.Second).Send(context.Background(), "a@b.c", subject, "<p>x</p>"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(gotTitle, "=?utf-8?q?") {
		t.Errorf("expected encoded title, got %q", gotTitle)
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(gotTitle)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if decoded != subject {
		t.Errorf("decoded title = %q, want %q", decoded, subject)
	}
}

func TestNtfySendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	err := NewNtfy(server.URL, time.Second).Send(context.Background(), "a@b.c", "s", "b")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("expected 403 error, got %v", err)
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("<h2>Hi &amp; welcome</h2>\n   <p>Line</p>")
	if got != "Hi & welcome\nLine" {
		t.Errorf("PlainText = %q", got)
	}
}

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("from@example.com", "to@example.com", "🎉 Match Found!", "<p>body</p>",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	raw := buf.String()
	lower := strings.ToLower(raw)

	for _, want := range []string{
		"from: <from@example.com>",
		"to: <to@example.com>",
		"subject: =?utf-8?q?",
		"content-type: text/html",
	} {
		if !strings.Contains(lower, want) {
			t.Errorf("message missing %q:\n%s", want, raw)
		}
	}
	if !strings.Contains(raw, "<p>body</p>") {
		t.Errorf("message missing body:\n%s", raw)
	}
}

func TestBuildMessageRejectsBadAddress(t *testing.T) {
	if _, err := buildMessage("from@example.com", "not an address", "s", "b", time.Now()); err == nil {
		t.Error("expected error for invalid recipient")
	}
}

// fakeSMTP accepts one plain SMTP session and records the DATA payload.
func fakeSMTP(t *testing.T) (port int, data <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.SetDeadline(time.Now().Add(5 * time.Second))

		r := bufio.NewReader(conn)
		reply := func(line string) { io.WriteString(conn, line+"\r\n") }
		reply("220 fake ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 fake")
			case cmd == "DATA":
				reply("354 go ahead")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				got <- body.String()
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				return
			default:
				reply("250 ok")
			}
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port, got
}

func TestSMTPSend(t *testing.T) {
	port, data := fakeSMTP(t)
	s := &SMTP{Host: "127.0.0.1", Port: port, From: "lostfound@example.com", Timeout: 5 * time.Second}

	if err := s.Send(context.Background(), "owner@example.com", "Match Found!", "<p>Your wallet</p>"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case msg := <-data:
		if !strings.Contains(msg, "owner@example.com") || !strings.Contains(msg, "Your wallet") {
			t.Errorf("unexpected message:\n%s", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestSMTPSendUnreachable(t *testing.T) {
	s := &SMTP{Host: "127.0.0.1", Port: 1, From: "a@b.c", Timeout: time.Second}
	if err := s.Send(context.Background(), "x@y.z", "s", "b"); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestLogAndNoop(t *testing.T) {
	if err := (Log{}).Send(context.Background(), "a@b.c", "s", "<p>b</p>"); err != nil {
		t.Errorf("Log.Send: %v", err)
	}
	if err := (Noop{}).Send(context.Background(), "a@b.c", "s", "b"); err != nil {
		t.Errorf("Noop.Send: %v", err)
	}
}
