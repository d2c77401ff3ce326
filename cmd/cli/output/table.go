package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/crucial707/fpadmin/internal/models"
)

// NoRecords is printed instead of an empty table.
const NoRecords = "No records found"

// LogHeaders are the columns of the attendance table.
var LogHeaders = []string{"#", "ID", "Name", "Date", "Time", "Direction", "Lab", "Record"}

// RenderTable prints a pretty table to w
func RenderTable(w io.Writer, headers []string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	t.Render()
}

// RenderLogs prints the attendance rows in display order.
func RenderLogs(w io.Writer, entries []models.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, NoRecords)
		return
	}
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{e.Index, e.UserID, e.Name, e.Date, e.Time, e.Direction, e.Lab, e.RecordID})
	}
	RenderTable(w, LogHeaders, rows)
}

// RenderJSON prints v as indented JSON.
func RenderJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
