// Package normalize converts uploaded source documents into the ordered
// request parts consumed by the extraction call. Spreadsheet-like files are
// flattened to an inspectable textual table (cell structure would be lost by
// binary ingestion); everything else travels as inline base64 with its
// declared media type.
package normalize

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
)

// FileKind is the closed set of input variants the normalizer understands.
type FileKind int

const (
	// KindBinary covers PDF and image inputs, which the extraction service
	// interprets natively as document/visual content.
	KindBinary FileKind = iota
	// KindSpreadsheet covers Excel workbooks, flattened sheet by sheet.
	KindSpreadsheet
	// KindHTMLTable covers HTML report exports; their tables are flattened
	// the same way as spreadsheet sheets.
	KindHTMLTable
)

// UploadedFile is an ephemeral in-memory upload. It exists only for the
// duration of one analysis request and is never persisted.
type UploadedFile struct {
	Name string
	MIME string
	Kind FileKind
	Data []byte
}

// NewUploadedFile builds an UploadedFile, resolving the file kind once from
// the name so downstream dispatch works on the tag, not on the string.
func NewUploadedFile(name, mime string, data []byte) UploadedFile {
	return UploadedFile{Name: name, MIME: mime, Kind: detectKind(name), Data: data}
}

func detectKind(name string) FileKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls":
		return KindSpreadsheet
	case ".html", ".htm":
		return KindHTMLTable
	default:
		return KindBinary
	}
}

// InlineData carries a base64 payload plus its media type.
type InlineData struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// RequestPart is one element of the ordered extraction request: either plain
// text or inline binary content. Exactly one of the two fields is set.
type RequestPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// UnreadableError reports an upload that could not be decoded. It always
// names the offending file.
type UnreadableError struct {
	FileName string
	Err      error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("file unreadable: %s: %v", e.FileName, e.Err)
}

func (e *UnreadableError) Unwrap() error { return e.Err }

// Normalize converts one uploaded file into exactly one request part.
// It is pure and safe to run concurrently across files.
func Normalize(file UploadedFile) (RequestPart, error) {
	switch file.Kind {
	case KindSpreadsheet:
		text, err := flattenWorkbook(file)
		if err != nil {
			return RequestPart{}, &UnreadableError{FileName: file.Name, Err: err}
		}
		return RequestPart{Text: text}, nil
	case KindHTMLTable:
		text, err := flattenHTMLTables(file)
		if err != nil {
			return RequestPart{}, &UnreadableError{FileName: file.Name, Err: err}
		}
		return RequestPart{Text: text}, nil
	default:
		return RequestPart{InlineData: &InlineData{
			Data:     base64.StdEncoding.EncodeToString(file.Data),
			MIMEType: file.MIME,
		}}, nil
	}
}

// NormalizeAll normalizes every file concurrently and reassembles the parts
// in input order. The first failure wins; no partial sequence is returned.
func NormalizeAll(files []UploadedFile) ([]RequestPart, error) {
	parts := make([]RequestPart, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i := range files {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			parts[i], errs[i] = Normalize(files[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// flattenWorkbook dumps every sheet as a row-major array-of-arrays JSON
// block labeled with the sheet name. Header rows are kept as data.
func flattenWorkbook(file UploadedFile) (string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Conteúdo do Arquivo (%s):\n", file.Name))
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if rows == nil {
			rows = [][]string{}
		}
		dump, err := json.Marshal(rows)
		if err != nil {
			return "", fmt.Errorf("encode sheet %q: %w", sheet, err)
		}
		sb.WriteString(fmt.Sprintf("\nSheet: %s\n%s\n", sheet, dump))
	}
	return sb.String(), nil
}

// flattenHTMLTables extracts every <table> into the same array-of-arrays
// dump used for spreadsheet sheets.
func flattenHTMLTables(file UploadedFile) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(file.Data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Conteúdo do Arquivo (%s):\n", file.Name))

	tables := doc.Find("table")
	if tables.Length() == 0 {
		// No tabular data; fall back to the visible text so the document is
		// still inspectable by the model.
		sb.WriteString(strings.TrimSpace(doc.Find("body").Text()))
		sb.WriteString("\n")
		return sb.String(), nil
	}

	tables.Each(func(i int, table *goquery.Selection) {
		rows := [][]string{}
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			row := []string{}
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				row = append(row, strings.TrimSpace(cell.Text()))
			})
			rows = append(rows, row)
		})
		dump, _ := json.Marshal(rows)
		sb.WriteString(fmt.Sprintf("\nTable: %d\n%s\n", i+1, dump))
	})
	return sb.String(), nil
}
