package report

import (
	"testing"

	"heritage/internal/agent"
)

func TestNewKeepsSuccessfulSections(t *testing.T) {
	out := &agent.Output{
		RunID:     "run-1",
		Narrative: "요약",
		Results: map[string]map[string]any{
			"get_heritage_text_record": {"status": "success", "text_record": "기록", "exhibition_count": float64(5)},
			"generate_visualization_data": {
				"status":             "success",
				"visualization_type": "연표",
				"data": []any{
					map[string]any{"year": float64(1920), "event": "유학"},
					map[string]any{"year": "1925", "event": "실험"},
				},
			},
		},
	}

	a, err := New(out, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Record == nil || a.Record.TextRecord != "기록" || a.Record.ExhibitionCount != 5 {
		t.Errorf("Unexpected record: %+v", a.Record)
	}
	if len(a.Timeline) != 2 || a.Timeline[1].Year != 1925 {
		t.Errorf("Expected weakly typed years to decode, got %+v", a.Timeline)
	}
	if a.Steps == nil {
		t.Error("Expected empty steps slice rather than nil")
	}
}

func TestNewDropsFailedSections(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]map[string]any
	}{
		{"errors", map[string]map[string]any{
			"get_heritage_text_record":    {"status": "error", "text_record": "없음"},
			"generate_visualization_data": {"status": "error", "message": "실패"},
		}},
		{"chart", map[string]map[string]any{
			"generate_visualization_data": {"status": "success", "visualization_type": "차트", "data": []any{}},
		}},
		{"nothing", map[string]map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(&agent.Output{Results: tt.results}, nil)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if a.Record != nil || a.Timeline != nil {
				t.Errorf("Expected no sections, got %+v %+v", a.Record, a.Timeline)
			}
		})
	}
}

func TestDefaultRequest(t *testing.T) {
	want := "'홍길동 작가'의 역사 기록을 검색하고, 그 기록을 바탕으로 주요 활동 시기를 '차트' 형식으로 시각화할 수 있도록 분석해 줘."
	if got := DefaultRequest("홍길동 작가", "차트"); got != want {
		t.Errorf("DefaultRequest() = %q", got)
	}
}
