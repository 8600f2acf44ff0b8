package service_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront-otp/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmsService_SendOtp(t *testing.T) {
	type captured struct {
		apiKey, to, text, from string
	}
	got := make(chan captured, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		got <- captured{
			apiKey: r.Header.Get("X-Api-Key"),
			to:     r.PostForm.Get("to"),
			text:   r.PostForm.Get("text"),
			from:   r.PostForm.Get("from"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sms := service.NewSmsService(srv.URL, "secret-key", "SHOP", "storefront", 3*time.Minute)
	require.NoError(t, sms.SendOtp(context.Background(), "+84901234567", "012345"))

	req := <-got
	assert.Equal(t, "secret-key", req.apiKey)
	assert.Equal(t, "+84901234567", req.to)
	assert.Equal(t, "SHOP", req.from)
	assert.Equal(t, "Storefront: your verification code is 012345. It expires in 3 minutes.", req.text)
}

func TestSmsService_GatewayRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	sms := service.NewSmsService(srv.URL, "bad-key", "", "storefront", 3*time.Minute)
	err := sms.SendOtp(context.Background(), "+84901234567", "012345")
	assert.ErrorContains(t, err, "401")
}

func TestSmsService_MissingKey(t *testing.T) {
	sms := service.NewSmsService("http://127.0.0.1:1", "", "", "storefront", 3*time.Minute)
	assert.Error(t, sms.SendOtp(context.Background(), "+84901234567", "012345"))
}

func TestOtpMessage(t *testing.T) {
	assert.Equal(t, "Corner Shop: your verification code is 000042. It expires in 5 minutes.",
		service.OtpMessage("corner shop", "000042", 5*time.Minute))
	assert.Contains(t, service.OtpMessage("shop", "000042", 30*time.Second), "expires in 1 minute.")
}

func TestEmailService(t *testing.T) {
	mail := service.NewEmailService("smtp.example.com", 587, "otp@example.com", "pw", "Shop", "sms.example.net", "shop", 3*time.Minute)
	assert.Equal(t, "84901234567@sms.example.net", mail.Recipient("+84 901-234-567"))

	noDomain := service.NewEmailService("smtp.example.com", 587, "otp@example.com", "pw", "Shop", "", "shop", 3*time.Minute)
	assert.ErrorContains(t, noDomain.SendOtp(context.Background(), "0901234567", "123456"), "domain")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, mail.SendOtp(ctx, "0901234567", "123456"), context.Canceled)
}

func TestEmailService_StopsWaitingOnDeadline(t *testing.T) {
	// accepts connections but never sends an SMTP greeting
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	var conns []net.Conn
	var mu sync.Mutex
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	port := ln.Addr().(*net.TCPAddr).Port
	mail := service.NewEmailService("127.0.0.1", port, "otp@example.com", "pw", "Shop", "sms.example.net", "shop", 3*time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = mail.SendOtp(ctx, "0901234567", "123456")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, service.LogSender{}.SendOtp(context.Background(), "0901234567", "123456"))
}
