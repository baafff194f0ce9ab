package nse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// browserHeaders is the header set the provider expects before it will
// serve data; without them responses degrade to block pages.
var browserHeaders = map[string]string{
	"Connection":                "keep-alive",
	"Cache-Control":             "max-age=0",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept-Language":           "en-US,en;q=0.9",
	"Sec-Fetch-User":            "?1",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-Mode":            "navigate",
}

// Session is the opaque credential bundle issued by the bootstrap request.
// It is immutable once created; renewal produces a new Session.
type Session struct {
	cookies []*http.Cookie
	created time.Time
	gen     uint64
}

// apply attaches the browser headers and session cookies to a request.
func (s *Session) apply(req *http.Request) {
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
}

// SessionManager owns the single process-wide provider session. Renewal is
// mutually exclusive: concurrent callers that observe a stale session wait
// for the in-flight handshake instead of triggering their own.
type SessionManager struct {
	mu           sync.Mutex
	httpClient   *http.Client
	bootstrapURL string
	maxAge       time.Duration
	current      *Session
	gen          uint64
	log          *zap.Logger
}

func NewSessionManager(bootstrapURL string, timeout, maxAge time.Duration, log *zap.Logger) *SessionManager {
	return &SessionManager{
		httpClient:   &http.Client{Timeout: timeout},
		bootstrapURL: bootstrapURL,
		maxAge:       maxAge,
		log:          log,
	}
}

// Ensure returns the current valid session, performing the handshake when
// none exists or the cached one aged out. Idempotent.
func (m *SessionManager) Ensure(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && (m.maxAge <= 0 || time.Since(m.current.created) < m.maxAge) {
		return m.current, nil
	}
	return m.renewLocked(ctx)
}

// Invalidate drops the cached session, but only if s is still the current
// one: a caller reporting a rejection after another caller already renewed
// must not throw away the fresh session.
func (m *SessionManager) Invalidate(s *Session) {
	if s == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.gen == s.gen {
		m.current = nil
	}
}

// renewLocked performs the handshake, retrying it once on failure.
// Caller must hold mu.
func (m *SessionManager) renewLocked(ctx context.Context) (*Session, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		sess, err := m.handshake(ctx)
		if err == nil {
			m.gen++
			sess.gen = m.gen
			m.current = sess
			m.log.Debug("session established",
				zap.Int("cookies", len(sess.cookies)),
				zap.Uint64("generation", sess.gen))
			return sess, nil
		}
		lastErr = err
		m.log.Warn("session handshake attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, fmt.Errorf("%w: %w", ErrSession, lastErr)
}

// handshake issues the unauthenticated bootstrap request and collects the
// anti-bot cookies from its response.
func (m *SessionManager) handshake(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.bootstrapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating bootstrap request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bootstrap request: %w", err)
	}
	defer resp.Body.Close()
	// Body content is irrelevant; drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("bootstrap status %d", resp.StatusCode)
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return nil, fmt.Errorf("bootstrap response issued no cookies")
	}

	return &Session{cookies: cookies, created: time.Now()}, nil
}
