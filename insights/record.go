package insights

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEdgesPath locates the post list inside a user-timeline export.
const DefaultEdgesPath = "data.xdt_api__v1__feed__user_timeline_graphql_connection.edges"

// Record is a normalized comment ready for analysis.
type Record struct {
	ID      string `json:"id"`
	Comment string `json:"comment"`
}

// NormalizeRecord trims both fields and replaces double quotes in the comment with single
// quotes so the text embeds safely in a JSON-producing prompt. ok is false when either field
// ends up empty.
func NormalizeRecord(id, comment string) (Record, bool) {
	id = strings.TrimSpace(id)
	comment = strings.TrimSpace(comment)
	if id == "" || comment == "" {
		return Record{}, false
	}
	return Record{ID: id, Comment: strings.ReplaceAll(comment, `"`, "'")}, true
}

// ReadRecordsCSV reads a table with a header row containing at least "id" and "comment".
// Rows lacking either value are skipped. Any parse error aborts with no records.
func ReadRecordsCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MalformedSourceError{Source: "csv", Err: errors.New("missing header row")}
		}
		return nil, &MalformedSourceError{Source: "csv", Err: err}
	}
	idCol, commentCol := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case "id":
			idCol = i
		case "comment":
			commentCol = i
		}
	}
	if idCol == -1 || commentCol == -1 {
		return nil, &MalformedSourceError{Source: "csv", Err: fmt.Errorf("header must contain id and comment columns, got %v", header)}
	}

	var out []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedSourceError{Source: "csv", Err: err}
		}
		rec, ok := NormalizeRecord(field(row, idCol), field(row, commentCol))
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// ReadRecordsExport reads a nested platform export and emits one record per edge whose node
// carries an id and caption text. An empty edgesPath uses DefaultEdgesPath. A missing or empty
// edge list yields zero records and no error.
func ReadRecordsExport(r io.Reader, edgesPath string) ([]Record, error) {
	if edgesPath == "" {
		edgesPath = DefaultEdgesPath
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &MalformedSourceError{Source: "export", Err: err}
	}
	if !gjson.ValidBytes(b) {
		return nil, &MalformedSourceError{Source: "export", Err: errors.New("invalid JSON")}
	}
	root := gjson.ParseBytes(b)
	if !root.IsObject() {
		return nil, &MalformedSourceError{Source: "export", Err: errors.New("top-level value is not an object")}
	}

	edges := root.Get(edgesPath)
	if !edges.IsArray() {
		return nil, nil
	}

	var out []Record
	edges.ForEach(func(_, edge gjson.Result) bool {
		node := edge.Get("node")
		if !node.IsObject() {
			return true
		}
		id := node.Get("id")
		text := node.Get("caption.text")
		if !isScalar(id) || !isScalar(text) {
			return true
		}
		if rec, ok := NormalizeRecord(id.String(), text.String()); ok {
			out = append(out, rec)
		}
		return true
	})
	return out, nil
}

func isScalar(v gjson.Result) bool {
	switch v.Type {
	case gjson.String, gjson.Number:
		return true
	default:
		return false
	}
}

// WriteRecordsCSV writes records as the id/comment table read by ReadRecordsCSV.
func WriteRecordsCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "comment"}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.ID, rec.Comment}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
