package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"heritage/internal/agent"
	"heritage/internal/llm"
	"heritage/internal/llm/mock"
	"heritage/internal/report"
	"heritage/internal/tool"
	"heritage/internal/tool/builtin"

	"golang.org/x/net/html"
)

func newTestServer(t *testing.T, client llm.Client) *httptest.Server {
	t.Helper()
	registry, err := tool.NewRegistry(builtin.NewRecordArchive(0), builtin.NewTimelineBuilder(0))
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	srv := httptest.NewServer(NewServer(agent.NewBaseAgent(client, registry, nil), Options{}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func parsePage(t *testing.T, resp *http.Response) *html.Node {
	t.Helper()
	defer resp.Body.Close()
	doc, err := html.Parse(resp.Body)
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}
	return doc
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// find returns every element node matching pred in document order.
func find(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func byID(doc *html.Node, id string) *html.Node {
	nodes := find(doc, func(n *html.Node) bool { return attr(n, "id") == id })
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func submit(t *testing.T, srv *httptest.Server, name, kind string) (*http.Response, *html.Node) {
	t.Helper()
	form := url.Values{
		"location":           {report.DefaultLocation},
		"structure_name":     {name},
		"visualization_type": {kind},
		"request":            {report.DefaultRequest(name, kind)},
	}
	resp, err := http.PostForm(srv.URL+"/", form)
	if err != nil {
		t.Fatalf("POST / failed: %v", err)
	}
	return resp, parsePage(t, resp)
}

func TestFormDefaults(t *testing.T) {
	srv := newTestServer(t, mock.NewDemo())
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	doc := parsePage(t, resp)

	inputs := find(doc, func(n *html.Node) bool { return n.Data == "input" })
	values := map[string]string{}
	for _, in := range inputs {
		values[attr(in, "name")] = attr(in, "value")
	}
	if values["location"] != "서울 종로" || values["structure_name"] != "홍길동 작가" {
		t.Errorf("Unexpected defaults: %v", values)
	}

	options := find(doc, func(n *html.Node) bool { return n.Data == "option" })
	if len(options) != 3 || attr(options[0], "value") != "연표" {
		t.Errorf("Expected 3 kinds starting with 연표, got %d", len(options))
	}

	textareas := find(doc, func(n *html.Node) bool { return n.Data == "textarea" })
	want := "'홍길동 작가'의 역사 기록을 검색하고, 그 기록을 바탕으로 주요 활동 시기를 '연표' 형식으로 시각화할 수 있도록 분석해 줘."
	if len(textareas) != 1 || text(textareas[0]) != want {
		t.Errorf("Unexpected request template")
	}
	if byID(doc, "narrative") != nil {
		t.Error("Expected no results before submission")
	}
}

func TestSubmitKnownFigureTimeline(t *testing.T) {
	srv := newTestServer(t, mock.NewDemo())
	resp, doc := submit(t, srv, "홍길동 작가", "연표")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	steps := find(byID(doc, "steps"), func(n *html.Node) bool { return n.Data == "li" })
	if len(steps) != 2 || !strings.HasPrefix(text(steps[0]), "STEP 1:") {
		t.Errorf("Expected 2 progress steps, got %d", len(steps))
	}
	record := byID(doc, "record")
	if record == nil || !strings.Contains(text(record), "마포를 사용한 물성 위주 작업") {
		t.Error("Expected the retrieved record section")
	}
	timeline := byID(doc, "timeline")
	if timeline == nil {
		t.Fatal("Expected the timeline section")
	}
	rows := find(timeline, func(n *html.Node) bool { return n.Data == "tr" })
	if len(rows) != 4 || !strings.Contains(text(rows[1]), "1920") || !strings.Contains(text(rows[3]), "1930") {
		t.Errorf("Expected header plus 3 timeline rows, got %d", len(rows))
	}
}

func TestSubmitChartShowsRecordOnly(t *testing.T) {
	srv := newTestServer(t, mock.NewDemo())
	_, doc := submit(t, srv, "홍길동 작가", "차트")
	if byID(doc, "record") == nil {
		t.Error("Expected the record section")
	}
	if byID(doc, "timeline") != nil {
		t.Error("Expected no timeline for a chart request")
	}
}

func TestSubmitUnknownFigure(t *testing.T) {
	srv := newTestServer(t, mock.NewDemo())
	_, doc := submit(t, srv, "김철수", "연표")
	if byID(doc, "narrative") == nil {
		t.Fatal("Expected a narrative")
	}
	if byID(doc, "record") != nil || byID(doc, "timeline") != nil {
		t.Error("Expected no record and no timeline for an unknown figure")
	}
}

func TestSubmitMissingInput(t *testing.T) {
	srv := newTestServer(t, mock.NewDemo())
	resp, doc := submit(t, srv, "  ", "연표")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
	warning := byID(doc, "warning")
	if warning == nil || text(warning) != "작가/유산 이름과 분석 요청을 입력해 주세요." {
		t.Error("Expected the missing input warning")
	}
}

func postJSON(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/analyze", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /api/analyze failed: %v", err)
	}
	return resp
}

func TestAPIAnalyze(t *testing.T) {
	srv := newTestServer(t, mock.NewDemo())
	resp := postJSON(t, srv, `{"location":"서울 종로","structure_name":"홍길동 작가","visualization_type":"연표"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var got report.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.RunID == "" || got.Narrative == "" {
		t.Errorf("Expected run ID and narrative, got %+v", got)
	}
	if got.Results["get_heritage_text_record"]["status"] != "success" {
		t.Errorf("Unexpected results: %v", got.Results)
	}
	if len(got.Steps) != 2 || len(got.Timeline) != 3 || got.Truncated {
		t.Errorf("Unexpected analysis: steps=%d timeline=%d truncated=%v", len(got.Steps), len(got.Timeline), got.Truncated)
	}
}

func TestAPIErrors(t *testing.T) {
	srv := newTestServer(t, mock.NewDemo())

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"structure_name":`},
		{"missing name", `{"structure_name":"  "}`},
		{"unknown kind", `{"structure_name":"홍길동","visualization_type":"지도"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv, tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", resp.StatusCode)
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
				t.Errorf("Expected an error body, got %v", err)
			}
		})
	}
}

func TestAPIUpstreamFailure(t *testing.T) {
	client := mock.NewScripted(mock.Text("unused")).
		FailWith(0, &llm.UpstreamServiceError{Provider: "openai", StatusCode: http.StatusServiceUnavailable})
	srv := newTestServer(t, client)

	resp := postJSON(t, srv, `{"structure_name":"홍길동 작가"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", resp.StatusCode)
	}
}

func TestAPIMalformedToolCall(t *testing.T) {
	client := mock.NewScripted(mock.ToolCalls(mock.Call("c1", "get_heritage_text_record", `[]`)))
	srv := newTestServer(t, client)

	resp := postJSON(t, srv, `{"structure_name":"홍길동 작가"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", resp.StatusCode)
	}
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if !strings.Contains(body.Error, "get_heritage_text_record") {
		t.Errorf("Expected the tool name in the error, got %q", body.Error)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, mock.NewDemo())
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
