package builtin

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"heritage/internal/tool"
)

func TestRecordArchive_KnownFigure(t *testing.T) {
	archive := NewRecordArchive(0)

	result, err := archive.LookupRecord(context.Background(), tool.RecordArgs{Location: "서울 종로", StructureName: "홍길동 작가"})
	if err != nil {
		t.Fatalf("LookupRecord failed: %v", err)
	}
	if !result.Success() {
		t.Fatalf("Expected success, got %s", result.Output)
	}

	text, _ := result.Data["text_record"].(string)
	if !strings.Contains(text, "단색화") {
		t.Errorf("Expected record to mention 단색화, got %q", text)
	}
	if result.Data["exhibition_count"] != float64(5) {
		t.Errorf("Expected exhibition_count=5, got %v", result.Data["exhibition_count"])
	}
	if !strings.HasPrefix(result.Output, `{"status":"success","text_record":"홍길동 작가는`) {
		t.Errorf("Unexpected payload layout: %s", result.Output)
	}
}

func TestRecordArchive_UnknownFigure(t *testing.T) {
	archive := NewRecordArchive(0)

	result, err := archive.LookupRecord(context.Background(), tool.RecordArgs{StructureName: "김철수"})
	if err != nil {
		t.Fatalf("LookupRecord failed: %v", err)
	}
	if result.Status != tool.StatusError {
		t.Fatalf("Expected error status, got %s", result.Status)
	}
	if result.Data["text_record"] != "'김철수'에 대한 상세 기록을 찾을 수 없습니다." {
		t.Errorf("Unexpected text_record: %v", result.Data["text_record"])
	}
	if _, ok := result.Data["exhibition_count"]; ok {
		t.Error("Expected no exhibition_count on error")
	}
}

func TestTimelineBuilder(t *testing.T) {
	builder := NewTimelineBuilder(0)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    tool.VisualizationArgs
		success bool
	}{
		{"timeline from monochrome record", tool.VisualizationArgs{Data: knownRecord, VisualizationType: KindTimeline}, true},
		{"chart is not supported", tool.VisualizationArgs{Data: knownRecord, VisualizationType: KindChart}, false},
		{"general analysis is not supported", tool.VisualizationArgs{Data: knownRecord, VisualizationType: KindGeneral}, false},
		{"text without marker", tool.VisualizationArgs{Data: "채색화만 남김", VisualizationType: KindTimeline}, false},
		{"empty text", tool.VisualizationArgs{VisualizationType: KindTimeline}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := builder.Visualize(ctx, tt.args)
			if err != nil {
				t.Fatalf("Visualize failed: %v", err)
			}
			if result.Success() != tt.success {
				t.Fatalf("Expected success=%v, got %s", tt.success, result.Output)
			}
			if !tt.success && result.Data["message"] != "요청된 시각화 데이터를 생성할 수 없습니다." {
				t.Errorf("Unexpected message: %v", result.Data["message"])
			}
		})
	}
}

func TestTimelineYearsIncrease(t *testing.T) {
	result, err := NewTimelineBuilder(0).Visualize(context.Background(), tool.VisualizationArgs{Data: knownRecord, VisualizationType: KindTimeline})
	if err != nil {
		t.Fatalf("Visualize failed: %v", err)
	}
	if result.Data["visualization_type"] != KindTimeline {
		t.Errorf("Expected visualization_type %s, got %v", KindTimeline, result.Data["visualization_type"])
	}

	entries, ok := result.Data["data"].([]any)
	if !ok || len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %v", result.Data["data"])
	}
	prev := 0.0
	for i, e := range entries {
		entry := e.(map[string]any)
		year := entry["year"].(float64)
		if year <= prev {
			t.Errorf("Entry %d year %v does not increase after %v", i, year, prev)
		}
		if entry["event"] == "" {
			t.Errorf("Entry %d has empty event", i)
		}
		prev = year
	}
}

func TestLatencyHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewRecordArchive(time.Hour).LookupRecord(ctx, tool.RecordArgs{StructureName: "홍길동"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Expected lookup to stop on cancellation")
	}
}
