package builtin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"heritage/internal/tool"
)

// knownFigure is the only name the mock archive has a record for. Any
// structure name containing it matches.
const knownFigure = "홍길동"

const knownRecord = "홍길동 작가는 1920년대 초 일본에서 유학했으며, 당시 파리 화단의 추상적 경향에 영향을 받았으나, " +
	"귀국 후 실험적인 단색화를 주로 선보였다. 초기에는 채색화도 병행했으나, 후기에는 마포를 사용한 물성 위주 작업에 집중했다."

type recordFound struct {
	Status          string `json:"status"`
	TextRecord      string `json:"text_record"`
	ExhibitionCount int    `json:"exhibition_count"`
}

type recordMissing struct {
	Status     string `json:"status"`
	TextRecord string `json:"text_record"`
}

// RecordArchive answers text-record lookups.
type RecordArchive struct {
	latency time.Duration
}

func NewRecordArchive(latency time.Duration) *RecordArchive {
	return &RecordArchive{latency: latency}
}

// LookupRecord returns the archived record for args.StructureName. The
// location is accepted but does not affect the answer.
func (a *RecordArchive) LookupRecord(ctx context.Context, args tool.RecordArgs) (*tool.Result, error) {
	if err := wait(ctx, a.latency); err != nil {
		return nil, err
	}

	if strings.Contains(args.StructureName, knownFigure) {
		return tool.NewResult(recordFound{
			Status:          string(tool.StatusSuccess),
			TextRecord:      knownRecord,
			ExhibitionCount: 5,
		})
	}
	return tool.NewResult(recordMissing{
		Status:     string(tool.StatusError),
		TextRecord: fmt.Sprintf("'%s'에 대한 상세 기록을 찾을 수 없습니다.", args.StructureName),
	})
}
