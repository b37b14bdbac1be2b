package remote_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/aretw0/wtf/pkg/remote"
)

const (
	testRepo = "someone/slang"
	testPath = ".wtf/res/definitions.txt"
)

// fakeGitHub serves the three endpoints the client uses.
type fakeGitHub struct {
	t *testing.T

	mu       sync.Mutex
	sha      string
	snapshot string
	gzip     bool
	// patches maps "from...to" to a patch. A missing key means the file did
	// not change; noPatch lists comparisons where the patch is withheld.
	patches map[string]string
	noPatch map[string]bool
	hits    map[string]int
	token   string
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, *httptest.Server) {
	t.Helper()
	f := &fakeGitHub{
		t:       t,
		patches: make(map[string]string),
		noPatch: make(map[string]bool),
		hits:    make(map[string]int),
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeGitHub) set(sha, snapshot string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sha = sha
	f.snapshot = snapshot
}

func (f *fakeGitHub) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[kind]
}

func (f *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodHead:
		f.hits["probe"]++
		w.WriteHeader(http.StatusOK)

	case path == "/repos/"+testRepo+"/commits/main":
		f.hits["version"]++
		if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
			http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"sha":%q,"commit":{"message":"update"}}`, f.sha)

	case strings.HasPrefix(path, "/repos/"+testRepo+"/compare/"):
		f.hits["compare"]++
		key := strings.TrimPrefix(path, "/repos/"+testRepo+"/compare/")
		files := []map[string]any{{"filename": "README.md", "patch": "@@ -1 +1 @@\n-a\n+b"}}
		if f.noPatch[key] {
			files = append(files, map[string]any{"filename": testPath, "status": "modified"})
		} else if p, ok := f.patches[key]; ok {
			files = append(files, map[string]any{"filename": testPath, "status": "modified", "patch": p})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ahead", "files": files})

	case strings.HasSuffix(path, "/"+testPath):
		f.hits["snapshot"]++
		body := []byte(f.snapshot)
		if f.gzip && strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			body = gzipBytes(f.t, body)
			w.Header().Set("Content-Encoding", "gzip")
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		_, _ = w.Write(body)

	default:
		http.NotFound(w, r)
	}
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestClient(srv *httptest.Server) *remote.Client {
	return remote.NewClient(remote.Config{
		APIBase: srv.URL,
		RawBase: srv.URL,
		Repo:    testRepo,
		Path:    testPath,
	})
}
