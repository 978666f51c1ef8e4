package builtin

import (
	"context"
	"strings"
	"time"

	"heritage/internal/tool"
)

// Visualization kinds offered to users.
const (
	KindTimeline = "연표"
	KindChart    = "차트"
	KindGeneral  = "일반 분석"
)

// Kinds lists the selectable visualization kinds in display order.
var Kinds = []string{KindTimeline, KindChart, KindGeneral}

// monochromeMarker must appear in the analysed text for a timeline to exist.
const monochromeMarker = "단색화"

// TimelineEntry is one dated event of a timeline.
type TimelineEntry struct {
	Year  int    `json:"year"`
	Event string `json:"event"`
}

var timeline = []TimelineEntry{
	{Year: 1920, Event: "일본 유학 및 서양 추상화 경향 접촉"},
	{Year: 1925, Event: "단색화 기법 실험 시작"},
	{Year: 1930, Event: "조선미술전람회에서 마포 질감 위주 작품 발표"},
}

type visualizationBuilt struct {
	Status            string          `json:"status"`
	VisualizationType string          `json:"visualization_type"`
	Data              []TimelineEntry `json:"data"`
}

type visualizationFailed struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TimelineBuilder answers visualization requests.
type TimelineBuilder struct {
	latency time.Duration
}

func NewTimelineBuilder(latency time.Duration) *TimelineBuilder {
	return &TimelineBuilder{latency: latency}
}

// Visualize builds a timeline when the text mentions monochrome painting and
// a timeline was asked for. Every other combination is reported as an error
// payload.
func (b *TimelineBuilder) Visualize(ctx context.Context, args tool.VisualizationArgs) (*tool.Result, error) {
	if err := wait(ctx, b.latency); err != nil {
		return nil, err
	}

	if strings.Contains(args.Data, monochromeMarker) && args.VisualizationType == KindTimeline {
		return tool.NewResult(visualizationBuilt{
			Status:            string(tool.StatusSuccess),
			VisualizationType: KindTimeline,
			Data:              timeline,
		})
	}
	return tool.NewResult(visualizationFailed{
		Status:  string(tool.StatusError),
		Message: "요청된 시각화 데이터를 생성할 수 없습니다.",
	})
}
