// Package report turns agent output into display-ready values shared by
// the web pages and the terminal renderer.
package report

import (
	"fmt"

	"heritage/internal/agent"
	"heritage/internal/hook/handlers"
	"heritage/internal/tool"
	"heritage/internal/tool/builtin"

	"github.com/mitchellh/mapstructure"
)

// Form defaults shown on first load.
const (
	DefaultLocation      = "서울 종로"
	DefaultStructureName = "홍길동 작가"
)

// MissingInputWarning is shown when the name or the request is blank.
const MissingInputWarning = "작가/유산 이름과 분석 요청을 입력해 주세요."

// DefaultRequest builds the prefilled analysis request.
func DefaultRequest(structureName, kind string) string {
	return fmt.Sprintf("'%s'의 역사 기록을 검색하고, 그 기록을 바탕으로 주요 활동 시기를 '%s' 형식으로 시각화할 수 있도록 분석해 줘.", structureName, kind)
}

// RecordView is the decoded lookup payload.
type RecordView struct {
	Status          string `mapstructure:"status"`
	TextRecord      string `mapstructure:"text_record"`
	ExhibitionCount int    `mapstructure:"exhibition_count"`
}

// TimelineRow is one row of the timeline table.
type TimelineRow struct {
	Year  int    `mapstructure:"year" json:"year"`
	Event string `mapstructure:"event" json:"event"`
}

// VisualizationView is the decoded visualization payload.
type VisualizationView struct {
	Status            string        `mapstructure:"status"`
	VisualizationType string        `mapstructure:"visualization_type"`
	Message           string        `mapstructure:"message"`
	Data              []TimelineRow `mapstructure:"data"`
}

func decodePayload(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// Analysis is one finished invocation prepared for display.
type Analysis struct {
	RunID     string                    `json:"run_id"`
	Narrative string                    `json:"narrative"`
	Results   map[string]map[string]any `json:"results"`
	Steps     []handlers.Step           `json:"steps"`
	Truncated bool                      `json:"truncated"`

	// Record is set only when the lookup succeeded.
	Record *RecordView `json:"-"`
	// Timeline is set only when a timeline was built.
	Timeline []TimelineRow `json:"timeline,omitempty"`
}

// New decodes the tool payloads of out. The record is kept only when the
// lookup succeeded and the timeline only when a 연표 was built.
func New(out *agent.Output, steps []handlers.Step) (*Analysis, error) {
	a := &Analysis{
		RunID:     out.RunID,
		Narrative: out.Narrative,
		Results:   out.Results,
		Steps:     steps,
		Truncated: out.Truncated,
	}
	if a.Steps == nil {
		a.Steps = []handlers.Step{}
	}

	if payload, ok := out.Results[tool.TextRecordLookup.Name()]; ok {
		var record RecordView
		if err := decodePayload(payload, &record); err != nil {
			return nil, fmt.Errorf("decode record payload: %w", err)
		}
		if record.Status == string(tool.StatusSuccess) {
			a.Record = &record
		}
	}

	if payload, ok := out.Results[tool.VisualizationGenerator.Name()]; ok {
		var viz VisualizationView
		if err := decodePayload(payload, &viz); err != nil {
			return nil, fmt.Errorf("decode visualization payload: %w", err)
		}
		if viz.Status == string(tool.StatusSuccess) && viz.VisualizationType == builtin.KindTimeline {
			a.Timeline = viz.Data
		}
	}
	return a, nil
}
