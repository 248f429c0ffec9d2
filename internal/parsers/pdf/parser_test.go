package pdf

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// buildPDF assembles a minimal uncompressed two-page PDF, computing
// the cross-reference offsets as the objects are written.
func buildPDF(pageOneText, pageTwoText string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 8)

	buf.WriteString("%PDF-1.4\n")

	add := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	contentStream := func(text string) string {
		stream := fmt.Sprintf("BT /F1 12 Tf (%s) Tj ET", text)
		return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
	}
	pageObject := func(contentsRef int) string {
		return fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]"+
			" /Contents %d 0 R /Resources << /Font << /F1 5 0 R >> >> >>", contentsRef)
	}

	add(1, "<< /Type /Catalog /Pages 2 0 R >>")
	add(2, "<< /Type /Pages /Kids [3 0 R 6 0 R] /Count 2 >>")
	add(3, pageObject(4))
	add(4, contentStream(pageOneText))
	add(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	add(6, pageObject(7))
	add(7, contentStream(pageTwoText))

	xref := buf.Len()
	buf.WriteString("xref\n0 8\n")
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= 7; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 8 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)

	return buf.Bytes()
}

func TestNew(t *testing.T) {
	parser := New()
	require.NotNil(t, parser)
	assert.IsType(t, &Parser{}, parser)
}

func TestFormats(t *testing.T) {
	parser := New()
	assert.Equal(t, []domain.Format{domain.FormatPDF}, parser.Formats())
}

func TestParse_Success(t *testing.T) {
	parser := New()

	raw := domain.RawDocument{
		Name: "field-notes.pdf",
		Data: buildPDF("First page of notes.", "Second page of notes."),
	}

	doc, err := parser.Parse(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "field notes", doc.Title)
	assert.Contains(t, doc.Text, "First page of notes.")
	assert.Contains(t, doc.Text, "Second page of notes.")
}

func TestParse_PagesSeparatedByBlankLine(t *testing.T) {
	parser := New()

	raw := domain.RawDocument{
		Name: "two.pdf",
		Data: buildPDF("alpha", "beta"),
	}

	doc, err := parser.Parse(context.Background(), raw)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "alpha\n\nbeta")
}

func TestParse_NotAPDF(t *testing.T) {
	parser := New()

	raw := domain.RawDocument{
		Name: "fake.pdf",
		Data: []byte("this is definitely not a pdf"),
	}

	_, err := parser.Parse(context.Background(), raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening pdf")
}

func TestParse_EmptyData(t *testing.T) {
	parser := New()

	_, err := parser.Parse(context.Background(), domain.RawDocument{Name: "empty.pdf"})
	require.Error(t, err)
}
