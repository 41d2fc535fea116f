package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
	"github.com/ChristianPRO1982/audio-splitter/internal/server"
	"github.com/ChristianPRO1982/audio-splitter/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// stubEncoder stands in for ffmpeg behind a real backend
type stubEncoder struct {
	mu   sync.Mutex
	cuts []segment.Segment
}

func (e *stubEncoder) Probe(ctx context.Context, input string) (float64, error) {
	return 10, nil
}

func (e *stubEncoder) Cut(ctx context.Context, src, dst string, seg segment.Segment, bitrateKbps int) error {
	e.mu.Lock()
	e.cuts = append(e.cuts, seg)
	e.mu.Unlock()
	return os.WriteFile(dst, []byte("ID3"), 0644)
}

func (e *stubEncoder) BuildEnvelope(ctx context.Context, src string, duration float64, points int) (*internal.Waveform, error) {
	values := make([]float64, points)
	for i := range values {
		values[i] = float64(i%4) / 4
	}
	return &internal.Waveform{TimesS: make([]float64, points), Values: values}, nil
}

func (e *stubEncoder) cutCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cuts)
}

type backend struct {
	url   string
	enc   *stubEncoder
	paths internal.StoragePaths
}

// newBackend starts the real API on an in-memory database
func newBackend(t *testing.T) *backend {
	t.Helper()
	db := testutil.CreateInMemoryDB(t)
	if err := internal.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	paths, err := internal.NewStoragePaths(testutil.CreateTempDir(t))
	if err != nil {
		t.Fatalf("NewStoragePaths() error = %v", err)
	}
	if err := paths.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout() error = %v", err)
	}

	enc := &stubEncoder{}
	srvCfg := internal.DefaultConfig().Server
	srvCfg.MaxUploadMB = 5
	s := server.New(srvCfg, internal.NewStore(db), paths, enc)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &backend{url: ts.URL, enc: enc, paths: paths}
}

// resetCommandState restores flag variables between runs of rootCmd
func resetCommandState(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AUDIO_SPLITTER_SERVER", "")

	verbose, configPath, serverURL, dataDir = false, "", "", ""
	cfg = internal.DefaultConfig()
	segmentsDuration, segmentsMarkers, segmentsNames, segmentsFormat = "", nil, nil, "table"
	exportMarkers, exportNames, exportBitrate, exportManifest = nil, nil, 0, ""
	deleteAll = false
	showWaveformWidth = 60
	healthcheckVerbose = false
	inspectSampleRows = 3
	serveAddr = ""

	reset := func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				if f.Value.Type() == "bool" {
					_ = f.Value.Set(f.DefValue)
				}
				f.Changed = false
			})
		}
	}
	reset(rootCmd)
	rootCmd.SetContext(context.Background())
	for _, c := range rootCmd.Commands() {
		reset(c)
		c.SetContext(context.Background())
	}
}

// runCommand executes rootCmd with args and stdin and returns its output
func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetCommandState(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// uploadFixture creates a project on b through the client and returns its id
func uploadFixture(t *testing.T, b *backend, name string) string {
	t.Helper()
	path := testutil.WriteFile(t, testutil.CreateTempDir(t), name, testutil.SilentWAV(t, 1))
	cfg = internal.DefaultConfig()
	cfg.Client.ServerURL = b.url
	id, err := newClient().CreateProject(context.Background(), path)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	return id
}
