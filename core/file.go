package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// File is an upload source for multipart requests.
type File interface {
	open() (content io.Reader, filename, contentType string, err error)
}

// FileBytes uploads an in-memory buffer. The buffer is only read.
type FileBytes struct {
	Content     []byte
	Filename    string
	ContentType string
}

func (f FileBytes) open() (io.Reader, string, string, error) {
	if strings.TrimSpace(f.Filename) == "" {
		return nil, "", "", errors.New("file name is required")
	}
	return bytes.NewReader(f.Content), f.Filename, f.ContentType, nil
}

// FilePath uploads a file from disk. The file is read when the request is
// built.
type FilePath string

func (f FilePath) open() (io.Reader, string, string, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, "", "", err
	}
	return bytes.NewReader(data), filepath.Base(string(f)), "", nil
}

// FileReader uploads from an already open reader.
type FileReader struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

func (f FileReader) open() (io.Reader, string, string, error) {
	if f.Reader == nil {
		return nil, "", "", errors.New("file reader is nil")
	}
	filename := f.Filename
	if strings.TrimSpace(filename) == "" {
		if named, ok := f.Reader.(interface{ Name() string }); ok {
			filename = filepath.Base(named.Name())
		}
	}
	if strings.TrimSpace(filename) == "" {
		return nil, "", "", errors.New("file name is required")
	}
	return f.Reader, filename, f.ContentType, nil
}

// ContentTypeFor infers an upload content type from the file extension.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func buildMultipart(form Fields, files map[string]File) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range form.Clean() {
		v, err := stringValue(value)
		if err != nil {
			return nil, "", fmt.Errorf("form field %q: %w", key, err)
		}
		if err := writer.WriteField(key, v); err != nil {
			return nil, "", fmt.Errorf("write form field %q: %w", key, err)
		}
	}

	for field, file := range files {
		if file == nil {
			continue
		}

		content, filename, contentType, err := file.open()
		if err != nil {
			return nil, "", fmt.Errorf("open file field %q: %w", field, err)
		}
		if strings.TrimSpace(contentType) == "" {
			contentType = ContentTypeFor(filename)
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(field), escapeQuotes(filename)))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create file field %q: %w", field, err)
		}
		if _, err := io.Copy(part, content); err != nil {
			return nil, "", fmt.Errorf("write file field %q: %w", field, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
