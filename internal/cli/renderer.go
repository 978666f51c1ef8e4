// Package cli renders analysis progress and results in the terminal.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"heritage/internal/hook/handlers"
	"heritage/internal/report"
)

// ANSI Color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// Renderer writes steps as they happen and the finished analysis.
type Renderer struct {
	writer    io.Writer
	colorMode bool
}

func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{writer: w, colorMode: true}
}

func (r *Renderer) SetColorMode(enabled bool) {
	r.colorMode = enabled
}

// Step prints one progress line. It matches the ProgressReporter sink.
func (r *Renderer) Step(step handlers.Step) {
	r.colored(ColorYellow, step.Message)
	fmt.Fprintln(r.writer)
}

// Analysis prints the narrative, then the record and timeline when present.
func (r *Renderer) Analysis(a *report.Analysis) {
	r.heading("에이전트 최종 분석 및 스토리텔링")
	fmt.Fprintln(r.writer, a.Narrative)
	if a.Truncated {
		r.colored(ColorYellow, "(도구 호출 한도에 도달하여 답변이 요약되었습니다.)")
		fmt.Fprintln(r.writer)
	}

	if a.Record != nil {
		r.heading("검색된 원본 역사 기록")
		fmt.Fprintln(r.writer, a.Record.TextRecord)
	}

	if len(a.Timeline) > 0 {
		r.heading("활동 연표 시각화 결과")
		for _, row := range a.Timeline {
			fmt.Fprintf(r.writer, "  %d  %s\n", row.Year, row.Event)
		}
	}
}

// Warning prints a highlighted warning line.
func (r *Renderer) Warning(msg string) {
	r.colored(ColorYellow, msg)
	fmt.Fprintln(r.writer)
}

// Error prints a highlighted error line.
func (r *Renderer) Error(msg string) {
	r.colored(ColorRed, msg)
	fmt.Fprintln(r.writer)
}

func (r *Renderer) heading(title string) {
	fmt.Fprintln(r.writer)
	r.colored(ColorBold+ColorCyan, title)
	fmt.Fprintln(r.writer)
	r.colored(ColorCyan, strings.Repeat("─", 60))
	fmt.Fprintln(r.writer)
}

func (r *Renderer) colored(color, content string) {
	if r.colorMode {
		fmt.Fprintf(r.writer, "%s%s%s", color, content, ColorReset)
	} else {
		fmt.Fprint(r.writer, content)
	}
}
