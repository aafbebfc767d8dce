package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestRunFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		"testdata/object_prototype.yaml",
		writeScenario(t, dir, "broken.yaml", "objects:\n  - name: a\n    kind: widget\n"),
		writeScenario(t, dir, "failing.yaml", "calls:\n  - method: valueOf\n    this: 1\n    expect: 2\n"),
		filepath.Join(dir, "missing.yaml"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	results, err := RunFiles(ctx, paths, 2)
	if err != nil {
		t.Fatalf("RunFiles failed: %v", err)
	}
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("result %d is for %s, want %s", i, res.Path, paths[i])
		}
	}

	if results[0].Error != nil || results[0].Report.Failed() != 0 {
		t.Errorf("object_prototype.yaml should pass: %+v", results[0])
	}
	if results[1].Error == nil || !strings.Contains(results[1].Error.Error(), "unknown kind") {
		t.Errorf("broken.yaml should fail to build, got %v", results[1].Error)
	}
	if results[2].Error != nil || results[2].Report.Failed() != 1 {
		t.Errorf("failing.yaml should run with one failure: %+v", results[2])
	}
	if results[2].Report.Scenario != "failing.yaml" {
		t.Errorf("scenario name should default to the file name, got %q", results[2].Report.Scenario)
	}
	if results[3].Error == nil {
		t.Errorf("missing.yaml should fail to load")
	}
}

func TestPoolLifecycle(t *testing.T) {
	pool := NewPool(1)
	if err := pool.Submit(&ScenarioJob{Path: "x"}); err == nil {
		t.Error("expected an error submitting before Start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pool.Start(ctx, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := pool.Start(ctx, 1); err == nil {
		t.Error("expected an error starting twice")
	}
	if err := pool.Submit(&ScenarioJob{Path: "testdata/object_prototype.yaml"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case res := <-pool.Results():
		if res.Error != nil {
			t.Errorf("unexpected error: %v", res.Error)
		}
		if res.Duration <= 0 {
			t.Error("expected a positive duration")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for result")
	}

	if err := pool.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := pool.Shutdown(ctx); err == nil {
		t.Error("expected an error shutting down twice")
	}
	if err := pool.Submit(&ScenarioJob{Path: "x"}); err == nil {
		t.Error("expected an error submitting after Shutdown")
	}

	stats := pool.Stats()
	if stats.TotalJobs != 1 || stats.CompletedJobs != 1 || stats.ActiveJobs != 0 || stats.WorkerCount != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if pool.HasActiveJobs() {
		t.Error("expected no active jobs after shutdown")
	}
}
