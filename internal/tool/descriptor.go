package tool

// Param describes one argument of a tool.
type Param struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// Descriptor is the immutable declaration of a tool presented to the model.
type Descriptor struct {
	ID          ID
	Description string
	Params      []Param
}

func (d Descriptor) Name() string {
	return d.ID.Name()
}

// Schema renders the parameter list as a JSON-schema object.
func (d Descriptor) Schema() map[string]any {
	props := make(map[string]any, len(d.Params))
	required := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

var descriptors = map[ID]Descriptor{
	TextRecordLookup: {
		ID:          TextRecordLookup,
		Description: "작가나 유산의 이름으로 상세한 역사 기록 텍스트를 검색합니다.",
		Params: []Param{
			{Name: "location", Type: "string"},
			{Name: "structure_name", Type: "string", Required: true},
		},
	},
	VisualizationGenerator: {
		ID:          VisualizationGenerator,
		Description: "분석된 텍스트를 기반으로 연표(timeline)나 차트(chart) 형태의 시각화 JSON 데이터를 생성합니다.",
		Params: []Param{
			{Name: "data", Type: "string", Required: true, Description: "분석할 텍스트 기록 전체"},
			{Name: "visualization_type", Type: "string", Required: true, Description: "원하는 시각화 형식 (연표, 차트 등)"},
		},
	},
}

// Describe returns the declaration of a tool.
func Describe(id ID) Descriptor {
	return descriptors[id]
}

// Descriptors returns every declaration in declaration order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(All))
	for i, id := range All {
		out[i] = descriptors[id]
	}
	return out
}
