package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/cargoplan/internal/advisor"
	"github.com/piwi3910/cargoplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

func TestBuildReport(t *testing.T) {
	report := buildTestReport(t)

	require.Len(t, report.Exceptions, 2)
	assert.Equal(t, advisor.KindUnplacedItems, report.Exceptions[0].Kind())
	assert.Equal(t, advisor.KindLowStability, report.Exceptions[1].Kind())
	assert.NotEmpty(t, report.Suggestions)

	require.Len(t, report.Alternatives, 1)
	assert.Equal(t, "big-van", report.Alternatives[0].Container.ID)
	assert.Equal(t, model.RejectOversize, report.rejectionReason("c"))
	assert.Equal(t, model.RejectReason(""), report.rejectionReason("a"))

	require.Len(t, report.AutoFixes, 1, "oversize pieces cannot be retried into place")
	assert.Equal(t, advisor.ActionRebalanceLoad, report.AutoFixes[0].Action)
	assert.Equal(t, []string{"a", "b"}, report.AutoFixes[0].AffectedIDs)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, buildTestReport(t)))
	out := buf.String()

	assert.Contains(t, out, "Load plan for Test Van")
	assert.Contains(t, out, "Generated 2026-03-01 08:30:00")
	assert.Contains(t, out, "Placed:           2")
	assert.Contains(t, out, "Pallet A")
	assert.Contains(t, out, "c (oversize)")
	assert.Contains(t, out, "[MEDIUM]")
	assert.Contains(t, out, "Big Van: More cargo space")
	assert.Contains(t, out, "Automatic fixes\n  - rebalance-load: Rebalance the center of gravity and axle loads (a, b)")
	assert.NotContains(t, out, "No exceptions")
}

func TestWriteText_CleanLoad(t *testing.T) {
	var buf bytes.Buffer
	report := Report{Result: model.OptimizationResult{Container: testContainer(), StabilityScore: 100}}
	require.NoError(t, WriteText(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "No exceptions")
	assert.NotContains(t, out, "Placements")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, buildTestReport(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5) // header, 2 placed, 1 unplaced, summary

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"1", "a", "Pallet A", "placed", "", "0", "0", "0", "10", "10", "5", "LWH", "200", "true"}, records[1])
	assert.Equal(t, "b", records[2][1])
	assert.Equal(t, "10", records[2][5])
	assert.Equal(t, "false", records[2][13])

	assert.Equal(t, "c", records[3][1])
	assert.Equal(t, "unplaced", records[3][3])
	assert.Equal(t, "oversize", records[3][4])

	summary := records[4]
	assert.Equal(t, "SUMMARY", summary[0])
	assert.Equal(t, "Test Van", summary[2])
	assert.True(t, strings.HasPrefix(summary[3], "2 placed"))
	assert.Equal(t, "1 unplaced", summary[4])
	assert.Equal(t, "300", summary[12])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, buildTestReport(t)))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	meta := doc["metadata"].(map[string]interface{})
	assert.Equal(t, "cargoplan", meta["generator"])
	assert.Equal(t, "2026-03-01T08:30:00Z", meta["generated_at"])

	opt := doc["optimization"].(map[string]interface{})
	assert.EqualValues(t, 2, opt["placed_count"])
	assert.EqualValues(t, 1, opt["unplaced_count"])
	assert.EqualValues(t, 300, opt["total_weight"])
	assert.Len(t, opt["axle_loads"], 2)

	cargo := doc["cargo"].(map[string]interface{})
	assert.Len(t, cargo["placed"], 2)
	assert.Equal(t, []interface{}{"c"}, cargo["unplaced"])

	exceptions := doc["exceptions"].([]interface{})
	require.Len(t, exceptions, 2)
	first := exceptions[0].(map[string]interface{})
	assert.Equal(t, "unplaced_items", first["kind"])
	assert.Equal(t, "medium", first["severity"])
	assert.Equal(t, []interface{}{"c"}, first["affected_ids"])
}

func TestWriteJSON_EmptyArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Report{}))

	out := buf.String()
	assert.Contains(t, out, `"placed": []`)
	assert.Contains(t, out, `"exceptions": []`)
	assert.Contains(t, out, `"suggestions": []`)
	assert.Contains(t, out, `"alternatives": []`)
	assert.Contains(t, out, `"auto_fixes": []`)
}

func TestExceptionRecords_NilAffectedIDs(t *testing.T) {
	records := ExceptionRecords([]advisor.Exception{
		advisor.WeightNearLimit{TotalWeight: 950, MaxGross: 1000, Percent: 95, Limit: 90},
	})
	require.Len(t, records, 1)
	assert.NotNil(t, records[0].AffectedIDs)
	assert.Equal(t, advisor.SeverityMedium, records[0].Severity)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	require.NoError(t, ExportXLSX(path, buildTestReport(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetPlacements, sheetAxles, sheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(sheetPlacements)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Piece ID", rows[0][1])
	assert.Equal(t, "a", rows[1][1])
	assert.Equal(t, "unplaced", rows[3][3])

	axles, err := f.GetRows(sheetAxles)
	require.NoError(t, err)
	require.Len(t, axles, 3)
	assert.Equal(t, "Front", axles[1][1])

	summary, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Container", "Test Van"}, summary[1])
	assert.Equal(t, "Exception", summary[len(summary)-4][0])
}

func TestExportDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.dxf")
	report := buildTestReport(t)
	require.NoError(t, ExportDXF(path, report.Result))

	d, err := dxf.Open(path)
	require.NoError(t, err)

	lines := 0
	for _, e := range d.Entities() {
		if _, ok := e.(*entity.Line); ok {
			lines++
		}
	}
	// container + two boxes at 12 edges each, plus both axle groups
	assert.Equal(t, 12+2*12+2, lines)
}

func TestExportDXF_SkipsAxleOutsideContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steer.dxf")
	result := model.OptimizationResult{
		Container: testContainer(),
		AxleLoads: []model.AxleLoad{{Label: "Steer", Position: -30}},
	}
	require.NoError(t, ExportDXF(path, result))

	d, err := dxf.Open(path)
	require.NoError(t, err)
	assert.Len(t, d.Entities(), 12)
}
