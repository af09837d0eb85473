//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/danngalann/astroweather/internal/modules/weather/weathertest"
)

const repoRootRel = ".."   // relative to ./e2e
const mainPkgRel = "./cmd" // main.go lives in cmd/

const refreshTopic = "astroweather/refresh"

var mosquittoPort = nat.Port("1883/tcp")

// weatherBackend stands in for the weather API and counts the requests it serves.
type weatherBackend struct {
	overviewHits atomic.Int32
	detailHits   atomic.Int32
}

func (b *weatherBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/weather":
		b.overviewHits.Add(1)
		_, _ = w.Write(weathertest.OverviewJSON("teide", "gredos"))
	case strings.HasPrefix(r.URL.Path, "/weather/"):
		b.detailHits.Add(1)
		slug := strings.TrimPrefix(r.URL.Path, "/weather/")
		if slug == "atlantis" {
			http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write(weathertest.LocationJSON(slug, false))
	default:
		http.NotFound(w, r)
	}
}

func TestSmoke(t *testing.T) {
	repoRoot := repoRootPath(t)

	sqlitePath := startSQLite(t)
	brokerHost, brokerPort := startMosquitto(t)

	backend := &weatherBackend{}
	upstream := httptest.NewServer(backend)
	t.Cleanup(upstream.Close)

	bin := buildBinary(t, repoRoot)
	addr := pickFreeAddr(t)

	env := append(os.Environ(),
		"APP_ENV=dev",
		"LOG_LEVEL=debug",
		"HTTP_ADDR="+addr,
		"STATIC_DIR="+filepath.Join(repoRoot, "static"),
		"API_URL="+upstream.URL,
		"REVALIDATE=1h",

		"DB_DRIVER=sqlite3",
		"SQLITE_PATH="+sqlitePath,

		"MQTT_BROKER="+brokerHost,
		"MQTT_PORT="+brokerPort.Port(),
		"MQTT_TOPIC="+refreshTopic,
		"MQTT_CLIENT_ID=astroweather-e2e",
	)

	cmd := exec.Command(bin, "serve")
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})

	client := &http.Client{Timeout: 5 * time.Second}
	base := "http://" + addr

	waitForOK(t, client, base+"/healthz", 10*time.Second)

	t.Run("healthz", func(t *testing.T) {
		resp, err := client.Get(base + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusOK)
		}
		var body map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode json: %v", err)
		}
		if body["status"] != "ok" {
			t.Fatalf("body.status=%q want=%q", body["status"], "ok")
		}
	})

	t.Run("overview is cached", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			status, body := get(t, client, base+"/")
			if status != http.StatusOK {
				t.Fatalf("status=%d want=%d", status, http.StatusOK)
			}
			if !strings.Contains(body, "Good Place Tonight") || !strings.Contains(body, "Teide gredos") {
				t.Fatalf("overview body missing locations")
			}
		}
		if n := backend.overviewHits.Load(); n != 1 {
			t.Fatalf("backend overview hits=%d want=1", n)
		}
	})

	t.Run("detail page", func(t *testing.T) {
		status, body := get(t, client, base+"/teide/detail")
		if status != http.StatusOK {
			t.Fatalf("status=%d want=%d", status, http.StatusOK)
		}
		if !strings.Contains(body, "Avg Cloud Cover") {
			t.Fatalf("detail body missing night cloud metric")
		}

		status, _ = get(t, client, base+"/atlantis/detail")
		if status != http.StatusNotFound {
			t.Fatalf("unknown location status=%d want=%d", status, http.StatusNotFound)
		}
	})

	t.Run("static stylesheet", func(t *testing.T) {
		status, body := get(t, client, base+"/static/style.css")
		if status != http.StatusOK || !strings.Contains(body, ".hour-night") {
			t.Fatalf("status=%d, stylesheet missing hour styles", status)
		}
	})

	t.Run("refresh notification invalidates cache", func(t *testing.T) {
		before := backend.overviewHits.Load()
		publishRefresh(t, bin, env, "teide")

		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			get(t, client, base+"/")
			if backend.overviewHits.Load() > before {
				return
			}
			time.Sleep(200 * time.Millisecond)
		}
		t.Fatalf("overview was not refetched after refresh notification (hits=%d)", backend.overviewHits.Load())
	})

	stopServer(t, cmd)
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return resp.StatusCode, string(b)
}

func startSQLite(t *testing.T) string {
	t.Helper()

	// Host temp dir that will contain app.db
	hostDir := t.TempDir()
	dbPath := filepath.Join(hostDir, "app.db")

	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:      "nouchka/sqlite3:latest",
		WorkingDir: "/data",
		Entrypoint: []string{"sh", "-c"},
		Cmd: []string{
			"sqlite3 /data/app.db \"PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;\" && " +
				"chmod 666 /data/app.db && " +
				"echo 'sqlite ready' && " +
				"tail -f /dev/null",
		},

		HostConfigModifier: func(hc *container.HostConfig) {
			hc.Binds = append(hc.Binds, hostDir+":/data")
		},
		WaitingFor: wait.ForLog("sqlite ready").WithStartupTimeout(30 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start sqlite container: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Terminate(ctx)
	})

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("sqlite db file not created: %v", err)
	}

	return dbPath
}

func startMosquitto(t *testing.T) (string, nat.Port) {
	t.Helper()

	ctx := context.Background()

	// 1.6 accepts anonymous clients on 1883 without a config file.
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:1.6",
		ExposedPorts: []string{string(mosquittoPort)},
		WaitingFor:   wait.ForListeningPort(mosquittoPort).WithStartupTimeout(30 * time.Second),
	}

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start mosquitto container: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Terminate(ctx)
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("mosquitto host: %v", err)
	}
	port, err := c.MappedPort(ctx, mosquittoPort)
	if err != nil {
		t.Fatalf("mosquitto port: %v", err)
	}

	return host, port
}

// publishRefresh runs the CLI's refresh command against the same broker.
func publishRefresh(t *testing.T, bin string, env []string, slug string) {
	t.Helper()

	refresh := exec.Command(bin, "refresh", slug)
	refresh.Env = env

	out, err := refresh.CombinedOutput()
	if err != nil {
		t.Fatalf("refresh %s: %v\n%s", slug, err, out)
	}
	if !strings.Contains(string(out), "refresh published for "+slug) {
		t.Fatalf("unexpected refresh output: %s", out)
	}
}

func repoRootPath(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	repo := filepath.Clean(filepath.Join(wd, repoRootRel))
	if _, err := os.Stat(filepath.Join(repo, "go.mod")); err != nil {
		t.Fatalf("repo root %q does not contain go.mod: %v", repo, err)
	}

	return repo
}

func buildBinary(t *testing.T, repoRoot string) string {
	t.Helper()

	tmp := t.TempDir()
	out := filepath.Join(tmp, "astroweather")

	build := exec.Command("go", "build", "-o", out, mainPkgRel)
	build.Dir = repoRoot
	build.Env = os.Environ()

	b, err := build.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(b))
	}

	return out
}

func pickFreeAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen :0: %v", err)
	}
	defer ln.Close()

	return ln.Addr().String()
}

func waitForOK(t *testing.T, client *http.Client, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server not healthy after %s: %s", timeout, url)
}

func stopServer(t *testing.T, cmd *exec.Cmd) {
	t.Helper()

	_ = cmd.Process.Signal(syscall.SIGTERM)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		t.Fatalf("server did not exit in time")
	case err := <-done:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				t.Fatalf("server exited non-zero: %v", err)
			}
			t.Fatalf("server wait error: %v", err)
		}
	}
}
