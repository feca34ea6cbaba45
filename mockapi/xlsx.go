package mockapi

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// buildWorkbook renders all posts as a single-sheet .xlsx file. The format is
// just a zip of XML parts, so inline strings are enough; no spreadsheet
// library needed for a fixture-sized export.
func buildWorkbook(store *Store) ([]byte, error) {
	var sheet strings.Builder
	sheet.WriteString(xml.Header)
	sheet.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)

	writeRow(&sheet, 1, []string{"PostID", "Name", "DateOfDeath", "Content", "CreatorUsername"})
	for i, p := range store.Posts() {
		writeRow(&sheet, i+2, []string{
			fmt.Sprintf("%d", p.PostID),
			p.Name,
			p.DateOfDeath,
			p.Content,
			p.CreatorUsername,
		})
	}
	sheet.WriteString(`</sheetData></worksheet>`)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", xml.Header +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
			`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
			`</Types>`},
		{"_rels/.rels", xml.Header +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
			`</Relationships>`},
		{"xl/workbook.xml", xml.Header +
			`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<sheets><sheet name="Posts" sheetId="1" r:id="rId1"/></sheets>` +
			`</workbook>`},
		{"xl/_rels/workbook.xml.rels", xml.Header +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
			`</Relationships>`},
		{"xl/worksheets/sheet1.xml", sheet.String()},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(sb *strings.Builder, row int, cells []string) {
	fmt.Fprintf(sb, `<row r="%d">`, row)
	for i, cell := range cells {
		ref := fmt.Sprintf("%c%d", 'A'+i, row)
		var escaped bytes.Buffer
		xml.EscapeText(&escaped, []byte(cell))
		fmt.Fprintf(sb, `<c r="%s" t="inlineStr"><is><t>%s</t></is></c>`, ref, escaped.String())
	}
	sb.WriteString(`</row>`)
}
