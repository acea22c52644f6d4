package normalize

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("new sheet: %v", err)
			}
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		name string
		want FileKind
	}{
		{"dre.xlsx", KindSpreadsheet},
		{"DRE.XLSX", KindSpreadsheet},
		{"dre.xlsm", KindSpreadsheet},
		{"legacy.xls", KindSpreadsheet},
		{"report.html", KindHTMLTable},
		{"report.htm", KindHTMLTable},
		{"scan.pdf", KindBinary},
		{"photo.png", KindBinary},
		{"noextension", KindBinary},
	}
	for _, c := range cases {
		if got := NewUploadedFile(c.name, "", nil).Kind; got != c.want {
			t.Errorf("detectKind(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestNormalizeSpreadsheetFlattensEverySheet(t *testing.T) {
	data := workbookBytes(t, map[string][][]any{
		"DRE 2024": {
			{"Conta", "Valor"},
			{"Receita", 10000},
		},
	})
	file := NewUploadedFile("demonstrativo.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)

	part, err := Normalize(file)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if part.InlineData != nil {
		t.Fatalf("spreadsheet produced inline data, want text")
	}
	if !strings.Contains(part.Text, "Conteúdo do Arquivo (demonstrativo.xlsx):") {
		t.Errorf("missing file label in %q", part.Text)
	}
	if !strings.Contains(part.Text, "Sheet: DRE 2024") {
		t.Errorf("missing sheet label in %q", part.Text)
	}
	// Header rows stay as data in the row-major dump.
	if !strings.Contains(part.Text, `["Conta","Valor"]`) {
		t.Errorf("header row missing from dump: %q", part.Text)
	}
	if !strings.Contains(part.Text, `["Receita","10000"]`) {
		t.Errorf("data row missing from dump: %q", part.Text)
	}
}

func TestNormalizeSpreadsheetMultipleSheetsOnePart(t *testing.T) {
	data := workbookBytes(t, map[string][][]any{
		"Trimestre 1": {{"Receita", 100}},
		"Trimestre 2": {{"Receita", 200}},
		"Trimestre 3": {{"Receita", 300}},
	})

	part, err := Normalize(NewUploadedFile("ano.xlsx", "", data))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, sheet := range []string{"Trimestre 1", "Trimestre 2", "Trimestre 3"} {
		if !strings.Contains(part.Text, "Sheet: "+sheet) {
			t.Errorf("sheet %q missing from single text part", sheet)
		}
	}
}

func TestNormalizeBinaryRoundTrip(t *testing.T) {
	payload := []byte("%PDF-1.7 fake body")
	file := NewUploadedFile("balanco.pdf", "application/pdf", payload)

	part, err := Normalize(file)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if part.Text != "" || part.InlineData == nil {
		t.Fatalf("binary file must produce exactly one inline part")
	}
	if part.InlineData.MIMEType != "application/pdf" {
		t.Errorf("mime = %q, want application/pdf", part.InlineData.MIMEType)
	}
	decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	if string(decoded) != string(payload) {
		t.Errorf("base64 round trip lost bytes: %q", decoded)
	}
}

func TestNormalizeHTMLTables(t *testing.T) {
	html := `<html><body>
		<table><tr><th>Conta</th><th>Valor</th></tr><tr><td>Receita</td><td>100</td></tr></table>
		<table><tr><td>Custos</td><td>40</td></tr></table>
	</body></html>`

	part, err := Normalize(NewUploadedFile("relatorio.html", "text/html", []byte(html)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(part.Text, "Table: 1") || !strings.Contains(part.Text, "Table: 2") {
		t.Errorf("expected both tables flattened, got %q", part.Text)
	}
	if !strings.Contains(part.Text, `["Conta","Valor"]`) || !strings.Contains(part.Text, `["Custos","40"]`) {
		t.Errorf("table rows missing from dump: %q", part.Text)
	}
}

func TestNormalizeHTMLWithoutTablesFallsBackToText(t *testing.T) {
	html := `<html><body><p>Relatório sem tabelas.</p></body></html>`
	part, err := Normalize(NewUploadedFile("nota.html", "text/html", []byte(html)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(part.Text, "Relatório sem tabelas.") {
		t.Errorf("body text fallback missing: %q", part.Text)
	}
}

func TestNormalizeCorruptSpreadsheet(t *testing.T) {
	_, err := Normalize(NewUploadedFile("broken.xlsx", "", []byte("not a zip archive")))
	if err == nil {
		t.Fatal("expected error for corrupt workbook")
	}
	var unreadable *UnreadableError
	if !errors.As(err, &unreadable) {
		t.Fatalf("error type = %T, want *UnreadableError", err)
	}
	if unreadable.FileName != "broken.xlsx" {
		t.Errorf("error names %q, want broken.xlsx", unreadable.FileName)
	}
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	files := []UploadedFile{
		NewUploadedFile("a.pdf", "application/pdf", []byte("first")),
		NewUploadedFile("b.pdf", "application/pdf", []byte("second")),
		NewUploadedFile("c.pdf", "application/pdf", []byte("third")),
		NewUploadedFile("d.pdf", "application/pdf", []byte("fourth")),
	}

	parts, err := NormalizeAll(files)
	if err != nil {
		t.Fatalf("NormalizeAll: %v", err)
	}
	if len(parts) != len(files) {
		t.Fatalf("got %d parts for %d files", len(parts), len(files))
	}
	for i, want := range []string{"first", "second", "third", "fourth"} {
		decoded, _ := base64.StdEncoding.DecodeString(parts[i].InlineData.Data)
		if string(decoded) != want {
			t.Errorf("part %d = %q, want %q (input order must survive concurrency)", i, decoded, want)
		}
	}
}

func TestNormalizeAllFailsAsAWhole(t *testing.T) {
	files := []UploadedFile{
		NewUploadedFile("ok.pdf", "application/pdf", []byte("fine")),
		NewUploadedFile("bad.xlsx", "", []byte("garbage")),
	}

	parts, err := NormalizeAll(files)
	if err == nil {
		t.Fatal("expected failure when one file is unreadable")
	}
	if parts != nil {
		t.Errorf("no partial sequence may be returned, got %v", parts)
	}
	var unreadable *UnreadableError
	if !errors.As(err, &unreadable) || unreadable.FileName != "bad.xlsx" {
		t.Errorf("error must identify the offending file, got %v", err)
	}
}
