package validation

import (
	"reflect"
	"testing"
)

func TestNewReport(t *testing.T) {
	r := NewReport()
	if !r.Valid {
		t.Error("new report should be valid")
	}
	if r.Errors == nil || r.Warnings == nil || r.Info == nil {
		t.Error("slices should be non-nil so they encode as []")
	}
	if r.Summary != "0 errors, 0 warnings, 0 info" {
		t.Errorf("summary = %q", r.Summary)
	}
}

func TestSeverityRouting(t *testing.T) {
	r := NewReport()
	r.AddWarning(Result{Level: LevelRelations, Message: "lookup failed", Severity: SeverityError})
	if !r.Valid {
		t.Error("a warning must not invalidate the report, whatever Severity the caller set")
	}
	r.AddInfo(Result{Level: LevelCompliance, Message: "score 95"})
	r.AddError(Result{Level: LevelLayout, Message: "rooms too close", Subject: "s1"})

	if r.Valid {
		t.Error("an error must invalidate the report")
	}
	checks := []struct {
		got  []Result
		want Severity
	}{
		{r.Errors, SeverityError},
		{r.Warnings, SeverityWarning},
		{r.Info, SeverityInfo},
	}
	for _, c := range checks {
		if len(c.got) != 1 || c.got[0].Severity != c.want {
			t.Errorf("%s bucket = %+v", c.want, c.got)
		}
	}
	if r.Summary != "1 error, 1 warning, 1 info" {
		t.Errorf("summary = %q", r.Summary)
	}
}

func TestWarnfInfof(t *testing.T) {
	r := NewReport()
	r.Warnf(LevelPlacement, "overlaps remain after airlock insertion (%d rounds)", 50)
	r.Infof(LevelPlacement, "placed %d rooms", 3)
	if got := r.WarningMessages(); len(got) != 1 || got[0] != "overlaps remain after airlock insertion (50 rounds)" {
		t.Errorf("warnings = %v", got)
	}
	if len(r.Info) != 1 || r.Info[0].Message != "placed 3 rooms" || r.Info[0].Level != LevelPlacement {
		t.Errorf("info = %+v", r.Info)
	}
}

func TestMerge(t *testing.T) {
	batch := NewReport()
	batch.Warnf(LevelRelations, "pair Weighing Room/Granulation failed")

	layout := NewReport()
	layout.AddError(Result{Level: LevelLayout, Message: "duplicate shape id"})
	layout.Warnf(LevelLayout, "no door route")
	layout.Infof(LevelLayout, "3 shapes")

	batch.Merge(layout)
	batch.Merge(nil)

	if batch.Valid {
		t.Error("merging an invalid report must invalidate the target")
	}
	if len(batch.Errors) != 1 || len(batch.Warnings) != 2 || len(batch.Info) != 1 {
		t.Errorf("counts = %d/%d/%d", len(batch.Errors), len(batch.Warnings), len(batch.Info))
	}
	if batch.Summary != "1 error, 2 warnings, 1 info" {
		t.Errorf("summary = %q", batch.Summary)
	}
	if got := batch.WarningMessages(); got[0] != "pair Weighing Room/Granulation failed" {
		t.Errorf("merge must keep the target's findings first, got %v", got)
	}
}

func TestErrorsBySubject(t *testing.T) {
	r := NewReport()
	r.AddError(Result{Message: "too close", Subject: "a", ConflictWith: "b"})
	r.AddError(Result{Message: "zero area", Subject: "a"})
	r.AddError(Result{Message: "layout is empty"})
	r.AddWarning(Result{Message: "ignored", Subject: "c"})

	want := map[string][]string{
		"a": {"too close", "zero area"},
		"b": {"too close"},
	}
	if got := r.ErrorsBySubject(); !reflect.DeepEqual(got, want) {
		t.Errorf("ErrorsBySubject = %v, want %v", got, want)
	}
}
