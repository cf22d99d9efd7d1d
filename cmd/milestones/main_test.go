package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tgienger/milestones/internal/db"
	"github.com/tgienger/milestones/internal/models"
	"github.com/tgienger/milestones/internal/store"
)

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		Projects: []models.Project{{ID: "p1", Name: "Launch", Color: models.Palette[0]}},
		Milestones: []models.Milestone{
			{ID: "m1", Title: "Beta", DueDate: "2024-01-01", Status: models.StatusInProgress, ProjectID: "p1"},
		},
	}
}

func TestWriteSnapshotJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSnapshot(&buf, sampleSnapshot(), "json"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), `"dueDate": "2024-01-01"`) {
		t.Fatalf("expected camelCase due date field, got:\n%s", buf.String())
	}

	var got models.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Milestones) != 1 || got.Milestones[0].Status != models.StatusInProgress {
		t.Fatalf("unexpected decoded snapshot %+v", got)
	}
}

func TestWriteSnapshotYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSnapshot(&buf, sampleSnapshot(), "yaml"); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got models.Snapshot
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Projects) != 1 || got.Projects[0].Name != "Launch" {
		t.Fatalf("unexpected decoded snapshot %+v", got)
	}
}

func TestWriteSnapshotEmptyUsesArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSnapshot(&buf, models.Snapshot{}, "json"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.Contains(buf.String(), "null") {
		t.Fatalf("expected empty arrays, got:\n%s", buf.String())
	}
}

func TestWriteSnapshotUnknownFormat(t *testing.T) {
	err := writeSnapshot(&bytes.Buffer{}, models.Snapshot{}, "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestWriteSummary(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()

	n := 0
	st, err := store.New(database, store.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	var empty bytes.Buffer
	if err := writeSummary(&empty, st, time.Now()); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if strings.TrimSpace(empty.String()) != "No projects." {
		t.Fatalf("unexpected empty summary %q", empty.String())
	}

	st.CreateProject("Launch", "")
	st.CreateMilestone("Beta", "", "2024-01-01", models.StatusInProgress)
	st.CreateMilestone("GA", "", "", models.StatusCompleted)

	var buf bytes.Buffer
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := writeSummary(&buf, st, now); err != nil {
		t.Fatalf("summary: %v", err)
	}
	rows := tableRows(buf.String())
	want := [][]string{
		{"PROJECT", "MILESTONES", "DONE", "OVERDUE"},
		{"Launch", "2", "50%", "1"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("expected rows %v, got %v\n%s", want, rows, buf.String())
	}
}

// tableRows extracts cell text from a bordered table, skipping rule lines
func tableRows(out string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "│") {
			continue
		}
		var cells []string
		for _, c := range strings.Split(line, "│") {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestExportCommandOnFreshDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("MILESTONES_DATA_DIR", filepath.Join(t.TempDir(), "unused"))
	t.Setenv("MILESTONES_VIEW", "timeline")
	t.Setenv("MILESTONES_LOG_LEVEL", "info")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"export", "--data-dir", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var got models.Snapshot
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode export: %v\n%s", err, out.String())
	}
	if len(got.Projects) != 0 || len(got.Milestones) != 0 {
		t.Fatalf("expected empty export, got %+v", got)
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "milestones dev") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}
