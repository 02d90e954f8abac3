package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// restoreGlobal puts the package state back after a test swaps it.
func restoreGlobal(t *testing.T) {
	t.Helper()
	prevLogger, prevJSON, prevTheme := Logger, JSONOutput, currentTheme
	t.Cleanup(func() {
		Logger, JSONOutput, currentTheme = prevLogger, prevJSON, prevTheme
	})
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
	}{
		{name: "JSON output mode", jsonOutput: true},
		{name: "Console output mode", jsonOutput: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreGlobal(t)
			Logger = nil

			var buf bytes.Buffer
			if err := InitializeWithWriter(&buf, tt.jsonOutput, VerbosityInfo); err != nil {
				t.Fatalf("InitializeWithWriter() error = %v", err)
			}
			if Logger == nil {
				t.Fatal("InitializeWithWriter() did not set global Logger")
			}
			if JSONOutput != tt.jsonOutput {
				t.Errorf("JSONOutput = %v, want %v", JSONOutput, tt.jsonOutput)
			}

			Infow("Filled template", FieldContract, "A123")
			Cleanup()

			if !strings.Contains(buf.String(), "A123") {
				t.Errorf("log output missing field value: %q", buf.String())
			}
		})
	}
}

func TestInitialize_JSONIsParseable(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	if err := InitializeWithWriter(&buf, true, VerbosityInfo); err != nil {
		t.Fatal(err)
	}
	Infow("Fetched record", FieldContract, "A123", FieldDurationMS, 12)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("JSON log line did not parse: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "Fetched record" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry[FieldContract] != "A123" {
		t.Errorf("%s = %v", FieldContract, entry[FieldContract])
	}
}

func TestInitialize_VerbosityFiltersLevels(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	if err := InitializeWithWriter(&buf, true, VerbosityUser); err != nil {
		t.Fatal(err)
	}

	Infow("hidden at default verbosity")
	Debugw("hidden too")
	Warnw("shown")
	Errorw("shown as well")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info/debug leaked at verbosity 0:\n%s", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected 2 lines, got:\n%s", out)
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{VerbosityAll + 3, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		if got := VerbosityToLevel(tt.verbosity); got != tt.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestLevelName(t *testing.T) {
	if got := LevelName(VerbosityDebug); got != "Debug (-vv)" {
		t.Errorf("LevelName(2) = %q", got)
	}
	if got := LevelName(9); got != "All (-vvvv+)" {
		t.Errorf("LevelName(9) = %q", got)
	}
	if got := LevelName(-1); got != "Unknown" {
		t.Errorf("LevelName(-1) = %q", got)
	}
}

func TestShouldOutput(t *testing.T) {
	tests := []struct {
		verbosity int
		category  OutputCategory
		want      bool
	}{
		{VerbosityUser, OutputResults, true},
		{VerbosityUser, OutputRunSummary, false},
		{VerbosityInfo, OutputRunSummary, true},
		{VerbosityInfo, OutputUnresolvedLeaf, false},
		{VerbosityDebug, OutputUnresolvedLeaf, true},
		{VerbosityDebug, OutputTokenTrace, false},
		{VerbosityTrace, OutputTokenTrace, true},
		{VerbosityTrace, OutputRecordDump, false},
		{VerbosityAll, OutputRecordDump, true},
		{VerbosityTrace, OutputCategory(999), false},
	}

	for _, tt := range tests {
		t.Run(CategoryName(tt.category), func(t *testing.T) {
			if got := ShouldOutput(tt.verbosity, tt.category); got != tt.want {
				t.Errorf("ShouldOutput(%d, %s) = %v, want %v",
					tt.verbosity, CategoryName(tt.category), got, tt.want)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	if err := InitializeWithWriter(&buf, true, VerbosityInfo); err != nil {
		t.Fatal(err)
	}

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithContract(ctx, "A123")
	ctx = WithComponent(ctx, "fill")

	fields := FieldsFromContext(ctx)
	if len(fields) != 6 {
		t.Fatalf("FieldsFromContext() = %v", fields)
	}

	LoggerFromContext(ctx).Infow("Run finished")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	for key, want := range map[string]string{FieldRunID: "run-1", FieldContract: "A123", FieldComponent: "fill"} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %s", key, entry[key], want)
		}
	}

	if LoggerFromContext(context.Background()) != Logger {
		t.Error("empty context should return the global logger")
	}
}

func TestComponentLogger(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	if err := InitializeWithWriter(&buf, true, VerbosityInfo); err != nil {
		t.Fatal(err)
	}
	ComponentLogger("cds").Infow("Fetched")

	if !strings.Contains(buf.String(), `"logger":"cds"`) {
		t.Errorf("component name missing: %s", buf.String())
	}
}

func TestSymbolHelpers(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	if err := InitializeWithWriter(&buf, true, VerbosityDebug); err != nil {
		t.Fatal(err)
	}

	FillInfow("Filled")
	FetchDebugw("Fetching")
	DBDebugw("Recorded")
	AddSymbol(Logger, "꩜").Infow("Watching")

	out := buf.String()
	for _, glyph := range []string{"✎", "⇣", "⊔", "꩜"} {
		if !strings.Contains(out, glyph) {
			t.Errorf("glyph %s missing from output:\n%s", glyph, out)
		}
	}
}

func TestCleanup_NilLogger(t *testing.T) {
	restoreGlobal(t)
	Logger = nil

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Cleanup() panicked: %v", r)
		}
	}()
	Cleanup()
	Infow("no-op")
	Errorw("no-op")
	Warnw("no-op")
	Debugw("no-op")
}

// BenchmarkInfow benchmarks structured logging through the console encoder
func BenchmarkInfow(b *testing.B) {
	core := zapcore.NewCore(newMinimalEncoder(), zapcore.AddSync(&bytes.Buffer{}), zap.InfoLevel)
	l := zap.New(core).Sugar()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Infow("Filled template", FieldContract, "A123", FieldLeaves, i)
	}
}
