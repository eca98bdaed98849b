package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

type mockStorageClient struct {
	uploaded  map[string][]byte
	uploadErr error
}

func newMockStorageClient() *mockStorageClient {
	return &mockStorageClient{uploaded: make(map[string][]byte)}
}

func (m *mockStorageClient) UploadFile(_ context.Context, objectName string, fileData io.Reader) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(fileData)
	if err != nil {
		return err
	}
	m.uploaded[objectName] = data
	return nil
}

func (m *mockStorageClient) DownloadFile(_ context.Context, objectName string) (io.ReadCloser, int64, error) {
	data, ok := m.uploaded[objectName]
	if !ok {
		return nil, 0, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func TestPersist_UsesCloudStorage(t *testing.T) {
	mock := newMockStorageClient()
	file := &model.File{}
	data := []byte("hello world")

	require.NoError(t, Persist(context.Background(), mock, file, data, ".pdf", ResumeObjectPrefix))

	require.NotNil(t, file.StorageObjectName)
	require.True(t, strings.HasPrefix(*file.StorageObjectName, ResumeObjectPrefix+"/"))
	require.Nil(t, file.Content)
	require.Equal(t, ".pdf", file.Extension)
	require.Equal(t, data, mock.uploaded[*file.StorageObjectName])
}

func TestPersist_FallsBackToDatabase(t *testing.T) {
	file := &model.File{}
	data := []byte("inline")

	require.NoError(t, Persist(context.Background(), nil, file, data, ".pdf", ResumeObjectPrefix))

	require.Nil(t, file.StorageObjectName)
	require.Equal(t, data, file.Content)
}

func TestPersist_UploadError(t *testing.T) {
	mock := newMockStorageClient()
	mock.uploadErr = errors.New("boom")

	err := Persist(context.Background(), mock, &model.File{}, []byte("fail"), ".pdf", ResumeObjectPrefix)
	require.EqualError(t, err, "boom")
}

// minimalPDF renders a one-page document showing text in Helvetica.
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText(minimalPDF("Hello resume"))
	require.NoError(t, err)
	require.Contains(t, text, "Hello")
}

func TestExtractText_Garbage(t *testing.T) {
	_, err := ExtractText([]byte("definitely not a pdf"))
	require.Error(t, err)
}
