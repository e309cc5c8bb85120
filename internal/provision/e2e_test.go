// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"crypto/sha1" //nolint:gosec // repository checksums
	"encoding/hex"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gudenau/rlaunch/internal/adoptium"
	"github.com/gudenau/rlaunch/internal/download"
	"github.com/gudenau/rlaunch/internal/extract"
	"github.com/gudenau/rlaunch/internal/maven"
	"github.com/gudenau/rlaunch/internal/testutil"
)

const nginxRoot = "/usr/share/nginx/html"

// checkTestcontainersAvailable reports whether a container provider can be
// reached. The provider lookup can panic when no engine is installed.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestRun_AgainstStaticMirror provisions from a static file server running in
// a container, then provisions again after the server is gone.
func TestRun_AgainstStaticMirror(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping container integration test: testcontainers provider not available")
	}

	sem := testutil.ContainerSemaphore()
	sem <- struct{}{}
	defer func() { <-sem }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	staged := stageMirror(t)
	files := make([]testcontainers.ContainerFile, 0, len(staged))
	for rel, host := range staged {
		files = append(files, testcontainers.ContainerFile{
			HostFilePath:      host,
			ContainerFilePath: path.Join(nginxRoot, rel),
			FileMode:          0o644,
		})
	}

	mirror, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nginx:alpine",
			ExposedPorts: []string{"80/tcp"},
			Files:        files,
			WaitingFor:   wait.ForHTTP("/").WithPort("80/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start mirror: %v", err)
	}
	terminated := false
	defer func() {
		if !terminated {
			_ = mirror.Terminate(context.Background())
		}
	}()

	base, err := mirror.PortEndpoint(ctx, "80/tcp", "http")
	if err != nil {
		t.Fatalf("failed to resolve mirror endpoint: %v", err)
	}

	root := filepath.Join(t.TempDir(), "libs")
	newDriver := func() *Driver {
		fetcher := download.NewFetcher()
		d, err := New(Dependencies{
			Versions:  adoptium.NewClient(adoptium.WithBaseURL(base)),
			Archives:  fetcher,
			Extractor: extract.New(),
			Libraries: maven.NewResolver(root, fetcher, maven.WithRepositoryURL(base+"/maven2")),
		}, Options{
			Major:                20,
			Target:               linux64,
			CacheRoot:            root,
			Libraries:            testLibraries,
			VersionCheckInterval: time.Hour,
			FeedSource:           base,
		})
		if err != nil {
			t.Fatalf("New() unexpected error: %v", err)
		}
		return d
	}

	first, err := newDriver().Run(ctx)
	if err != nil {
		t.Fatalf("first Run() unexpected error: %v", err)
	}
	if !first.Downloaded || first.Version != testVersion {
		t.Errorf("first run = %+v", first)
	}

	if err := mirror.Terminate(ctx); err != nil {
		t.Fatalf("failed to stop mirror: %v", err)
	}
	terminated = true

	second, err := newDriver().Run(ctx)
	if err != nil {
		t.Fatalf("offline Run() unexpected error: %v", err)
	}
	if second.Initial != StateRuntimeValid || second.Java != first.Java {
		t.Errorf("offline run = %+v", second)
	}
}

// stageMirror writes the feed, the runtime archive and the libraries to a
// temporary directory and returns them keyed by URL path.
func stageMirror(t *testing.T) map[string]string {
	t.Helper()

	dir := t.TempDir()
	staged := map[string]string{}
	put := func(rel string, data []byte) {
		host := filepath.Join(dir, filepath.FromSlash(rel))
		testutil.MustMkdirAll(t, filepath.Dir(host), 0o755)
		if err := os.WriteFile(host, data, 0o644); err != nil {
			t.Fatal(err)
		}
		staged[rel] = host
	}

	feed, err := json.Marshal(map[string]any{"versions": []adoptium.Version{testVersion}})
	if err != nil {
		t.Fatal(err)
	}
	put(feedPath, feed)

	archive := filepath.Join(t.TempDir(), "runtime.tar.gz")
	testutil.WriteTarGz(t, archive, testutil.Files(runtimeFiles))
	put(archivePath, []byte(testutil.MustReadFile(t, archive)))

	for _, lib := range testLibraries {
		content := []byte("jar:" + lib.Coordinate.String())
		sum := sha1.Sum(content) //nolint:gosec // repository checksums
		put(repoPrefix+lib.Coordinate.RelPath(), content)
		put(repoPrefix+lib.Coordinate.RelPath()+".sha1", []byte(hex.EncodeToString(sum[:])))
	}
	return staged
}
