package web

import (
	"heritage/internal/report"
	"heritage/internal/tool/builtin"
)

// formView carries the form state and the rendered outcome.
type formView struct {
	Location          string
	StructureName     string
	VisualizationType string
	Request           string
	Kinds             []string
	Warning           string
	Error             string
	Analysis          *report.Analysis
}

func newFormView() *formView {
	return &formView{
		Location:          report.DefaultLocation,
		StructureName:     report.DefaultStructureName,
		VisualizationType: builtin.KindTimeline,
		Request:           report.DefaultRequest(report.DefaultStructureName, builtin.KindTimeline),
		Kinds:             builtin.Kinds,
	}
}
