package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// SessionCookie is the cookie the fake controller hands out on login.
const SessionCookie = "unifises=fake-session"

// FakeController serves the controller endpoints a backup run uses.
// Probe and download sizes are scripted per attempt; once a script runs out
// its last value is repeated.
type FakeController struct {
	Server *httptest.Server

	LoginRC   string // meta.rc returned by /api/login (default "ok")
	TriggerRC string // meta.rc returned by the backup command (default "ok")

	LoginCalls    atomic.Int64
	TriggerCalls  atomic.Int64
	ProbeCalls    atomic.Int64
	DownloadCalls atomic.Int64

	mu            sync.Mutex
	probeSizes    []int64
	downloadSizes []int
	downloadCodes []int
	userAgents    []string
	cookies       []string
}

// NewFakeController starts a fake controller that is closed with the test.
func NewFakeController(tb testing.TB) *FakeController {
	tb.Helper()

	f := &FakeController{LoginRC: "ok", TriggerRC: "ok"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", f.login)
	mux.HandleFunc("POST /api/s/{site}/cmd/backup", f.trigger)
	mux.HandleFunc("/dl/backup/{file}", f.download)

	f.Server = httptest.NewServer(mux)
	tb.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake controller.
func (f *FakeController) URL() string {
	return f.Server.URL
}

// SetProbeSizes scripts the Content-Length returned by successive HEAD requests.
func (f *FakeController) SetProbeSizes(sizes ...int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeSizes = sizes
}

// SetDownloadSizes scripts the body length returned by successive GET requests.
func (f *FakeController) SetDownloadSizes(sizes ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadSizes = sizes
}

// SetDownloadCodes scripts the status of successive GET requests (default 200).
func (f *FakeController) SetDownloadCodes(codes ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadCodes = codes
}

// UserAgents returns the User-Agent of every request received so far.
func (f *FakeController) UserAgents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.userAgents...)
}

// Cookies returns the Cookie header of every authenticated request so far.
func (f *FakeController) Cookies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cookies...)
}

func (f *FakeController) record(r *http.Request, authenticated bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userAgents = append(f.userAgents, r.Header.Get("User-Agent"))
	if authenticated {
		f.cookies = append(f.cookies, r.Header.Get("Cookie"))
	}
}

func (f *FakeController) login(w http.ResponseWriter, r *http.Request) {
	f.LoginCalls.Add(1)
	f.record(r, false)

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if f.LoginRC == "ok" {
		http.SetCookie(w, &http.Cookie{Name: "unifises", Value: "fake-session", Path: "/"})
		writeMeta(w, http.StatusOK, "ok")
		return
	}
	writeMeta(w, http.StatusBadRequest, f.LoginRC)
}

func (f *FakeController) trigger(w http.ResponseWriter, r *http.Request) {
	f.TriggerCalls.Add(1)
	f.record(r, true)

	var body struct {
		Days int    `json:"days"`
		Cmd  string `json:"cmd"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Cmd != "async-backup" {
		writeMeta(w, http.StatusBadRequest, "error")
		return
	}
	writeMeta(w, http.StatusOK, f.TriggerRC)
}

func (f *FakeController) download(w http.ResponseWriter, r *http.Request) {
	f.record(r, true)
	if r.Header.Get("Cookie") != SessionCookie {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodHead:
		n := f.ProbeCalls.Add(1)
		f.mu.Lock()
		size := pick(f.probeSizes, n, 0)
		f.mu.Unlock()
		if size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		n := f.DownloadCalls.Add(1)
		f.mu.Lock()
		code := int(pick(intsTo64(f.downloadCodes), n, http.StatusOK))
		size := int(pick(intsTo64(f.downloadSizes), n, 0))
		f.mu.Unlock()
		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(bytes.Repeat([]byte{0xAB}, size))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeMeta(w http.ResponseWriter, status int, rc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"meta": map[string]string{"rc": rc},
		"data": []any{},
	})
}

// pick returns the value for 1-based call n, repeating the last entry.
func pick(script []int64, n int64, fallback int64) int64 {
	if len(script) == 0 {
		return fallback
	}
	if int(n) > len(script) {
		return script[len(script)-1]
	}
	return script[n-1]
}

func intsTo64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}
