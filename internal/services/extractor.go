package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/resume-matcher/internal/models"
)

type DocumentExtractor interface {
	Extract(data []byte, fileType models.FileType) (string, error)
}

type documentExtractor struct{}

func NewDocumentExtractor() DocumentExtractor {
	return &documentExtractor{}
}

// DetectFileType maps a file name suffix (case-insensitive) to a FileType.
func DetectFileType(fileName string) (models.FileType, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(fileName)))
	switch ext {
	case ".pdf":
		return models.FileTypePDF, nil
	case ".docx":
		return models.FileTypeDOCX, nil
	case ".txt":
		return models.FileTypeTXT, nil
	default:
		return "", fmt.Errorf("%w: %q (use PDF, DOCX, or TXT)", ErrUnsupportedFormat, ext)
	}
}

// Extract implements DocumentExtractor. It returns either the full text or an
// error, never a partial result.
func (e *documentExtractor) Extract(data []byte, fileType models.FileType) (string, error) {
	switch fileType {
	case models.FileTypePDF:
		return extractPDF(data)
	case models.FileTypeDOCX:
		return extractDOCX(data)
	case models.FileTypeTXT:
		return extractTXT(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileType)
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = extractionError("pdf", fmt.Errorf("panic: %v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", extractionError("pdf", fmt.Errorf("failed to open PDF: %w", err))
	}

	totalPage := r.NumPage()
	pages := make([]string, 0, totalPage)

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", extractionError("pdf", fmt.Errorf("page %d: %w", pageIndex, err))
		}

		pages = append(pages, pageText)
	}

	return strings.Join(pages, "\n"), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", extractionError("docx", errors.New("empty docx data"))
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", extractionError("docx", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", extractionError("docx", errors.New("word/document.xml not found"))
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", extractionError("docx", err)
	}
	defer rc.Close()

	text, err := docxVisibleText(rc)
	if err != nil {
		return "", extractionError("docx", err)
	}

	return text, nil
}

// docxVisibleText collects w:t runs, turning paragraph ends, breaks and tabs
// into whitespace.
func docxVisibleText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var buf strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteString("\t")
			case "br", "cr":
				buf.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}

func extractTXT(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", extractionError("txt", errors.New("content is not valid UTF-8"))
	}

	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
