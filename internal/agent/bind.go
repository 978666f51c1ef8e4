package agent

import "heritage/internal/tool"

// bindInvocationContext replaces model-proposed arguments with the caller's
// values. A visualization always analyses the latest lookup's text_record,
// whatever that lookup's status, or the empty string when there was none.
func bindInvocationContext(ic InvocationContext) tool.Binder {
	return func(call *tool.Call, results *tool.ResultSet) {
		switch call.Tool {
		case tool.TextRecordLookup:
			call.Record.Location = ic.Location
			call.Record.StructureName = ic.StructureName
		case tool.VisualizationGenerator:
			data := ""
			if r, ok := results.Get(tool.TextRecordLookup.Name()); ok {
				data, _ = r.Data["text_record"].(string)
			}
			call.Visualization.Data = data
			call.Visualization.VisualizationType = ic.VisualizationType
		}
	}
}
